package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/buildtrack/buildtrack-backend/api/controllers"
	"github.com/buildtrack/buildtrack-backend/api/routes"
	"github.com/buildtrack/buildtrack-backend/internal/allocation"
	"github.com/buildtrack/buildtrack-backend/internal/auth"
	"github.com/buildtrack/buildtrack-backend/internal/inventory"
	"github.com/buildtrack/buildtrack-backend/internal/labor"
	"github.com/buildtrack/buildtrack-backend/internal/messages"
	"github.com/buildtrack/buildtrack-backend/internal/reports"
	"github.com/buildtrack/buildtrack-backend/internal/sites"
	"github.com/buildtrack/buildtrack-backend/internal/users"
	"github.com/buildtrack/buildtrack-backend/pkg/auth/session"
	"github.com/buildtrack/buildtrack-backend/pkg/config"
	"github.com/buildtrack/buildtrack-backend/pkg/db"
	"github.com/buildtrack/buildtrack-backend/pkg/logger"
	"github.com/buildtrack/buildtrack-backend/pkg/metrics"
	"github.com/buildtrack/buildtrack-backend/pkg/migrate"
	"github.com/buildtrack/buildtrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := auth.EnsureSeedAdmin(context.Background(), dbClient, cfg.Password, cfg.Seed, logg); err != nil {
		logg.Error(context.Background(), "failed to seed administrator account", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	siteRepo := sites.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.DefaultRegisterService(dbClient, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	siteService, err := sites.NewService(siteRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create site service", err)
		os.Exit(1)
	}

	allocationService, err := allocation.NewService(dbClient, allocation.NewRepository(), siteService)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocation service", err)
		os.Exit(1)
	}

	laborService, err := labor.NewService(labor.NewRepository(dbClient.DB()), userRepo, siteRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create labor service", err)
		os.Exit(1)
	}

	messageService, err := messages.NewService(messages.NewRepository(dbClient.DB()), userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create message service", err)
		os.Exit(1)
	}

	reportService := reports.NewService(reports.NewRepository(dbClient.DB()))

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Redis:          redisClient,
		Metrics:        metrics.NewHTTPMetrics(),
		SessionManager: sessionManager,
		HealthDeps: map[string]controllers.DependencyPinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		AuthService:       authService,
		RegisterService:   registerService,
		InventoryService:  inventoryService,
		SiteService:       siteService,
		AllocationService: allocationService,
		LaborService:      laborService,
		MessageService:    messageService,
		ReportService:     reportService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
