package cli

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/catalog"
	"github.com/mmynk/storefront/internal/config"
	"github.com/mmynk/storefront/internal/metrics"
	"github.com/mmynk/storefront/internal/middleware"
	"github.com/mmynk/storefront/internal/service"
	"github.com/mmynk/storefront/internal/storage"
	"github.com/mmynk/storefront/internal/web"
)

func newImporter(cfg *config.Config, store storage.ItemStore, reg *metrics.Registry, logger *slog.Logger) *catalog.Importer {
	opts := []catalog.Option{
		catalog.WithLogger(logger),
		catalog.WithTimeout(cfg.Catalog.Timeout),
	}
	// A nil *Registry must not end up inside a non-nil interface.
	if reg != nil {
		opts = append(opts, catalog.WithObserver(reg))
	}
	return catalog.NewImporter(store, catalog.NewHTTPFetcher(cfg.Catalog.URL, nil), opts...)
}

// newHandler builds the complete HTTP surface: pages, Connect services,
// health and metrics, wrapped in session, CORS and logging middleware and
// served over h2c.
func newHandler(cfg *config.Config, store storage.Store, reg *metrics.Registry, logger *slog.Logger) (http.Handler, error) {
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	sessions := auth.NewSessionProvider(jwtManager)
	authenticator := auth.NewPasswordAuthenticator(store)

	site, err := web.NewServer(store, authenticator, sessions, logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	site.Register(mux)

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor())
	mux.Handle(service.NewCatalogServiceHandler(service.NewCatalogService(store, logger), interceptors))
	mux.Handle(service.NewAuthServiceHandler(service.NewAuthService(authenticator, store, jwtManager, logger), interceptors))
	mux.Handle("GET /metrics", reg.Handler())

	var handler http.Handler = mux
	handler = middleware.Session(sessions)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.RequestLogger(reg, web.RouteLabel)(handler)

	// h2c serves HTTP/2 without TLS, which Connect clients use
	return h2c.NewHandler(handler, &http2.Server{}), nil
}
