package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/storefront/internal/storage/sqlite"
)

const catalogBody = `{"products": [
	{"id": 1, "title": "A", "description": "first", "price": 9.99, "images": ["x.png"], "category": "c", "stock": 5},
	{"id": 2, "title": "B", "description": "second", "price": "not a price", "stock": 1},
	{"id": 3, "title": "C", "description": "third", "price": "4.50", "stock": 2}
], "total": 3, "skip": 0, "limit": 0}`

func catalogServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// runCLI executes the root command in a scratch working directory so no
// storefront.yaml from the repo is picked up.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	srv := catalogServer(t, catalogBody)
	dbPath := filepath.Join(t.TempDir(), "nested", "shop.db")

	out, err := runCLI(t, "import", "--url", srv.URL, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported "+srv.URL)
	assert.Contains(t, out, "total:    3")
	assert.Contains(t, out, "inserted: 2")
	assert.Contains(t, out, "failed:   1")
	assert.Contains(t, out, "#1 id=2 invalid_price")

	t.Run("second run skips existing rows", func(t *testing.T) {
		out, err := runCLI(t, "import", "--url", srv.URL, "--db", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "inserted: 0")
		assert.Contains(t, out, "skipped:  2")
	})

	t.Run("rows are stored", func(t *testing.T) {
		store, err := sqlite.New(dbPath)
		require.NoError(t, err)
		defer store.Close()

		count, err := store.CountItems(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		item, err := store.GetItem(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, 4.5, item.Price)
	})
}

func TestImportCommandJSON(t *testing.T) {
	srv := catalogServer(t, catalogBody)

	out, err := runCLI(t, "import", "--json", "--url", srv.URL, "--db", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)

	var report reportJSON
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "invalid_price", report.Failures[0].Reason)
	assert.Equal(t, int64(2), report.Failures[0].ID)
}

func TestImportCommandStrict(t *testing.T) {
	srv := catalogServer(t, catalogBody)

	_, err := runCLI(t, "import", "--strict", "--url", srv.URL, "--db", filepath.Join(t.TempDir(), "shop.db"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 3 rows failed")
}

func TestImportCommandBatchFailure(t *testing.T) {
	srv := catalogServer(t, `{"products": {"not": "an array"}}`)
	dbPath := filepath.Join(t.TempDir(), "shop.db")

	_, err := runCLI(t, "import", "--url", srv.URL, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "catalog import failed")

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()
	count, err := store.CountItems(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportCommandBadConfig(t *testing.T) {
	_, err := runCLI(t, "import", "--url", "not a url", "--db", filepath.Join(t.TempDir(), "shop.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
