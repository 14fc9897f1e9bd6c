package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/middleware"
	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage/sqlite"
)

type testClients struct {
	catalog *CatalogServiceClient
	auth    *AuthServiceClient
	store   *sqlite.SQLiteStore
}

// setupTestServer serves both services over a temp database, behind the same
// session middleware the server uses.
func setupTestServer(t *testing.T) testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	catalogPath, catalogHandler := NewCatalogServiceHandler(NewCatalogService(store, nil))
	authPath, authHandler := NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, nil))

	mux := http.NewServeMux()
	mux.Handle(catalogPath, catalogHandler)
	mux.Handle(authPath, authHandler)

	server := httptest.NewServer(middleware.Session(auth.NewSessionProvider(jwtManager))(mux))
	t.Cleanup(server.Close)

	return testClients{
		catalog: NewCatalogServiceClient(http.DefaultClient, server.URL),
		auth:    NewAuthServiceClient(http.DefaultClient, server.URL),
		store:   store,
	}
}

func seedItems(t *testing.T, store *sqlite.SQLiteStore, items ...*models.Item) {
	t.Helper()
	for _, item := range items {
		if _, err := store.InsertItemIfAbsent(context.Background(), item); err != nil {
			t.Fatalf("failed to seed item %d: %v", item.ID, err)
		}
	}
}
