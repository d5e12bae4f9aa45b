package http

import (
	"net/http"
	"time"

	"github.com/ajinkyamaster/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog            catalog.Repository
	Submitter          Submitter
	StaticDir          string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Logger             *zap.Logger
}

// NewRouter wires the catalog, cart and health endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout, l)
	cartHandler := NewCartHandler(cfg.Submitter, l)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(RequestLogger(l))
	r.Use(Recoverer(l))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, l, &APIError{Status: http.StatusNotFound, Message: MsgNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, l, &APIError{Status: http.StatusMethodNotAllowed, Message: MsgMethodNotAllowed})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", productHandler.List)
		r.With(ValidateCartRequest(cfg.MaxRequestBodySize, l)).Post("/cart", cartHandler.Submit)
	})

	if cfg.StaticDir != "" {
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.StaticDir+"/images")))
		r.Get("/images/*", fs.ServeHTTP)
	}

	return otelhttp.NewHandler(r, "storefront-api")
}
