package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buildtrack/buildtrack-backend/api/controllers"
	"github.com/buildtrack/buildtrack-backend/api/middleware"
	"github.com/buildtrack/buildtrack-backend/internal/allocation"
	"github.com/buildtrack/buildtrack-backend/internal/auth"
	"github.com/buildtrack/buildtrack-backend/internal/inventory"
	"github.com/buildtrack/buildtrack-backend/internal/labor"
	"github.com/buildtrack/buildtrack-backend/internal/messages"
	"github.com/buildtrack/buildtrack-backend/internal/reports"
	"github.com/buildtrack/buildtrack-backend/internal/sites"
	"github.com/buildtrack/buildtrack-backend/pkg/auth/session"
	"github.com/buildtrack/buildtrack-backend/pkg/config"
	"github.com/buildtrack/buildtrack-backend/pkg/logger"
	"github.com/buildtrack/buildtrack-backend/pkg/metrics"
	"github.com/buildtrack/buildtrack-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redis.Client
	Metrics        *metrics.HTTPMetrics
	SessionManager sessionManager
	HealthDeps     map[string]controllers.DependencyPinger

	AuthService       auth.Service
	RegisterService   auth.RegisterService
	InventoryService  inventory.Service
	SiteService       sites.Service
	AllocationService allocation.Service
	LaborService      labor.Service
	MessageService    messages.Service
	ReportService     reports.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.HealthDeps))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(d.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))

		// Read surface shared by every signed-in role.
		r.Get("/inventory", controllers.InventoryList(d.InventoryService, logg))
		r.Get("/inventory/with-allocation", controllers.InventoryListWithAllocation(d.InventoryService, logg))
		r.Get("/sites", controllers.SitesList(d.SiteService, logg))
		r.Get("/sites/{siteId}", controllers.SiteGet(d.SiteService, logg))
		r.Get("/sites/{siteId}/team", controllers.SiteTeam(d.LaborService, logg))
		r.Get("/workers", controllers.WorkersList(d.LaborService, logg))
		r.Get("/dashboard", controllers.Dashboard(d.ReportService, logg))

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", controllers.MessagesList(d.MessageService, logg))
			r.Post("/", controllers.MessageSend(d.MessageService, logg))
			r.Post("/{messageId}/read", controllers.MessageMarkRead(d.MessageService, logg))
			r.Post("/read-all", controllers.MessagesMarkAllRead(d.MessageService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/site-progress", controllers.ReportSiteProgress(d.ReportService, logg))
			r.Get("/inventory-by-category", controllers.ReportInventoryByCategory(d.ReportService, logg))
			r.Get("/allocation-summary", controllers.ReportAllocationSummary(d.ReportService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))

			r.Post("/inventory", controllers.InventoryCreate(d.InventoryService, logg))
			r.Patch("/inventory/{itemId}", controllers.InventoryUpdate(d.InventoryService, logg))
			r.Delete("/inventory/{itemId}", controllers.InventoryDelete(d.InventoryService, logg))
			r.Post("/inventory/allocate", controllers.InventoryAllocate(d.AllocationService, logg))
			r.Post("/inventory/usage", controllers.InventoryRecordUsage(d.AllocationService, logg))

			r.Post("/sites", controllers.SiteCreate(d.SiteService, logg))
			r.Patch("/sites/{siteId}", controllers.SitePatch(d.SiteService, logg))
			r.Delete("/sites/{siteId}", controllers.SiteDelete(d.SiteService, logg))

			r.Post("/workers", controllers.WorkerRegister(d.RegisterService, logg))
			r.Post("/workers/{workerId}/assign", controllers.WorkerAssign(d.LaborService, logg))
			r.Delete("/workers/{workerId}/assignment", controllers.WorkerUnassign(d.LaborService, logg))
			r.Delete("/workers/{workerId}", controllers.WorkerDeactivate(d.RegisterService, logg))
		})
	})

	return r
}
