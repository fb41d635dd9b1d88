package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"onec-traders.backend/internal/config"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/internal/infrastructure/repositories"
	"onec-traders.backend/internal/usecases"
	"onec-traders.backend/pkg/logger"
)

var openAccrualDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false, TranslateError: true})
}

var openAccrualSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type accrualRunner interface {
	RunDailyAccrual(ctx context.Context, asOf time.Time) (*entities.AccrualRunResult, error)
}

type accrualRunDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (accrualRunner, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAccrualRunDeps() accrualRunDeps {
	return accrualRunDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (accrualRunner, io.Closer, error) {
			db, err := openAccrualDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openAccrualSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			userRepo := repositories.NewUserRepository(db)
			investmentRepo := repositories.NewInvestmentRepository(db)
			referralRepo := repositories.NewReferralRepository(db)
			txRepo := repositories.NewTransactionRepository(db)
			uow := repositories.NewUnitOfWork(db)
			notifier := usecases.NewNotificationUsecase(repositories.NewNotificationRepository(db), nil)

			resolver := usecases.NewReferralResolver(userRepo)
			distributor := usecases.NewCommissionDistributor(uow, userRepo, referralRepo, txRepo, investmentRepo, resolver, notifier)
			return usecases.NewAccrualUsecase(uow, investmentRepo, userRepo, txRepo, distributor, notifier, cfg.Accrual.Workers), sqlDB, nil
		},
		now: time.Now,
		out: os.Stdout,
	}
}

// resolveDate parses --date in loc, defaulting to today in loc
func resolveDate(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return now.In(loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

func printSummary(out io.Writer, result *entities.AccrualRunResult) {
	_, _ = fmt.Fprintf(out, "date=%s\n", result.AsOf.Format(time.DateOnly))
	_, _ = fmt.Fprintf(out, "processed=%d\n", result.Processed)
	_, _ = fmt.Fprintf(out, "paid=%s\n", result.Paid.StringFixed(2))
	_, _ = fmt.Fprintf(out, "matured=%d\n", result.Matured)
	_, _ = fmt.Fprintf(out, "skipped=%d\n", result.Skipped)
	_, _ = fmt.Fprintf(out, "errors=%d\n", len(result.Errors))
	for _, e := range result.Errors {
		_, _ = fmt.Fprintf(out, "  investment=%s error=%s\n", e.InvestmentID, e.Error)
	}
}

func runAccrual(args []string, deps accrualRunDeps) error {
	def := defaultAccrualRunDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("accrual-run", flag.ContinueOnError)
	dateFlag := fs.String("date", "", "calendar day to accrue, YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	logger.Init(cfg.Server.Env)
	defer logger.Sync()

	asOf, err := resolveDate(*dateFlag, deps.now(), cfg.Accrual.Location())
	if err != nil {
		return err
	}

	runner, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := logger.WithRunID(context.Background(), "cli-"+asOf.Format(time.DateOnly))
	started := time.Now()
	result, err := runner.RunDailyAccrual(ctx, asOf)
	if err != nil {
		return fmt.Errorf("accrual run failed: %w", err)
	}
	logger.Info(ctx, "Accrual run finished", zap.Duration("elapsed", time.Since(started)))

	printSummary(deps.out, result)
	return nil
}

func main() {
	if err := runAccrual(os.Args[1:], defaultAccrualRunDeps()); err != nil {
		log.Fatal(err)
	}
}
