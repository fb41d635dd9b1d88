package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"onec-traders.backend/internal/config"
	"onec-traders.backend/internal/infrastructure/jobs"
	"onec-traders.backend/internal/infrastructure/metrics"
	"onec-traders.backend/internal/infrastructure/models"
	"onec-traders.backend/internal/infrastructure/repositories"
	"onec-traders.backend/internal/interfaces/http/handlers"
	"onec-traders.backend/internal/interfaces/http/middleware"
	"onec-traders.backend/internal/usecases"
	"onec-traders.backend/pkg/jwt"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/redis"
)

const idempotencyPrefix = "idempotency:"

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	newRedis   = redis.New
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	migrateDB = func(db *gorm.DB) error { return db.AutoMigrate(models.Ledger()...) }
	runServer = func(ctx context.Context, r *gin.Engine, port string) error {
		srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
	getStdDB = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

// app bundles what runMainProcess starts and stops
type app struct {
	router *gin.Engine
	job    *jobs.DailyAccrualJob
}

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	rdb, err := newRedis(cfg.Redis.URL, cfg.Redis.Password)
	if err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer rdb.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(ctx, "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(ctx, "Connected to PostgreSQL via GORM")
	}

	if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(ctx, "Database schema migrated")
	}

	a := buildApp(cfg, db, rdb, prometheus.NewRegistry())

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Accrual.Enabled {
		if err := a.job.Start(runCtx); err != nil {
			return fmt.Errorf("failed to start accrual job: %w", err)
		}
		defer a.job.Stop()
	}

	logger.Info(ctx, "1C Traders backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(a.router.Routes())),
	)

	if err := runServer(runCtx, a.router, cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

// buildApp wires repositories, usecases and handlers into a router
func buildApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client, reg *prometheus.Registry) *app {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(reg)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry)

	userRepo := repositories.NewUserRepository(db)
	investmentRepo := repositories.NewInvestmentRepository(db)
	referralRepo := repositories.NewReferralRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	notificationUsecase := usecases.NewNotificationUsecase(notificationRepo, rdb)
	resolver := usecases.NewReferralResolver(userRepo)
	distributor := usecases.NewCommissionDistributor(uow, userRepo, referralRepo, txRepo, investmentRepo, resolver, notificationUsecase).
		WithObserver(recorder)
	accrualUsecase := usecases.NewAccrualUsecase(uow, investmentRepo, userRepo, txRepo, distributor, notificationUsecase, cfg.Accrual.Workers).
		WithObserver(recorder)
	investmentUsecase := usecases.NewInvestmentUsecase(uow, investmentRepo, userRepo, referralRepo, notificationUsecase)
	userUsecase := usecases.NewUserUsecase(uow, userRepo, referralRepo, resolver, notificationUsecase)
	walletUsecase := usecases.NewWalletUsecase(uow, userRepo, txRepo, notificationUsecase, cfg.Withdrawal.MinAmount)

	job := jobs.NewDailyAccrualJob(accrualUsecase, rdb, recorder, cfg.Accrual)
	idempotencyStore := redis.NewIdempotencyStore(rdb, idempotencyPrefix, middleware.LockDuration, middleware.RetentionDuration)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(recorder))

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r, reg)
	registerAPIV1Routes(r, routeDeps{
		planHandler:           handlers.NewPlanHandler(),
		authHandler:           handlers.NewAuthHandler(userUsecase),
		investmentHandler:     handlers.NewInvestmentHandler(investmentUsecase),
		walletHandler:         handlers.NewWalletHandler(walletUsecase),
		notificationHandler:   handlers.NewNotificationHandler(notificationUsecase),
		adminHandler:          handlers.NewAdminHandler(accrualUsecase, cfg.Accrual.Location()),
		authMiddleware:        middleware.AuthMiddleware(jwtService),
		idempotencyMiddleware: middleware.IdempotencyMiddleware(idempotencyStore),
	})

	return &app{router: r, job: job}
}
