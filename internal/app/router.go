package app

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/catalog"
	"github.com/kitforge-id/kitforge/internal/changereq"
	"github.com/kitforge-id/kitforge/internal/estimate"
	"github.com/kitforge-id/kitforge/internal/forms"
	"github.com/kitforge-id/kitforge/internal/observability"
	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/orders/board"
	"github.com/kitforge-id/kitforge/internal/progress"
	"github.com/kitforge-id/kitforge/internal/shared"
	"github.com/kitforge-id/kitforge/internal/uploads"
	"github.com/kitforge-id/kitforge/jobs"
)

// RouterParams collects every mounted handler.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	EstimateHandler  *estimate.Handler
	OrderHandler     *orders.Handler
	BoardHandler     *board.Handler
	ChangeReqHandler *changereq.Handler
	ProgressHandler  *progress.Handler
	UploadHandler    *uploads.Handler
	FormsHandler     *forms.Handler
	JobHandler       *jobs.Handler

	UploadDir     string
	UploadBaseURL string
}

// NewRouter assembles the HTTP surface.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         p.Logger,
		Config:         p.Config,
		SessionManager: p.SessionManager,
		Metrics:        p.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())

	if p.UploadDir != "" && p.UploadBaseURL != "" {
		prefix := strings.TrimSuffix(p.UploadBaseURL, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(p.UploadDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", p.AuthHandler.MountRoutes)
		r.Route("/catalog", p.CatalogHandler.MountRoutes)
		r.Route("/estimates", p.EstimateHandler.MountRoutes)
		r.Route("/orders", func(r chi.Router) {
			p.OrderHandler.MountRoutes(r)
			p.BoardHandler.MountRoutes(r)
			p.ChangeReqHandler.MountOrderRoutes(r)
			p.ProgressHandler.MountOrderRoutes(r)
		})
		r.Route("/change-requests", p.ChangeReqHandler.MountRoutes)
		r.Route("/uploads", p.UploadHandler.MountRoutes)
		r.Route("/forms", p.FormsHandler.MountRoutes)
		if p.JobHandler != nil {
			r.Route("/jobs", p.JobHandler.MountRoutes)
		}
	})

	return r
}
