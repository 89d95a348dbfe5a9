package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/okravets/linktally/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// LinkService defines the interface for the core short link business logic.
type LinkService interface {
	// CreateShortLink stores the original URL under a generated or
	// user-supplied short code and returns the created link.
	CreateShortLink(ctx context.Context, originalURL string, validityMinutes int, customCode string) (*models.URL, error)

	// ResolveShortCode retrieves the link for a short code and records
	// the click against it.
	ResolveShortCode(ctx context.Context, shortCode string, click models.ClickEvent) (*models.URL, error)

	// LinkStats retrieves the click statistics of the link associated
	// with the short code.
	LinkStats(ctx context.Context, shortCode string) (*models.LinkStats, error)
}

// NewRouter initializes and returns a new HTTP router with all routes and
// middleware configured. The literal routes (shorturls, health, metrics,
// swagger, docs) are registered alongside the catch-all short code route;
// chi gives static segments precedence, so those names can never be
// shadowed by a short code lookup.
func NewRouter(logger *httplog.Logger, svc LinkService, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(collectMetrics)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Post("/shorturls", handleCreateShortLink(svc, baseURL))
	r.Get("/shorturls/{shortCode}", handleGetLinkStats(svc))
	r.Get("/{shortCode}", handleRedirect(svc))

	return r
}
