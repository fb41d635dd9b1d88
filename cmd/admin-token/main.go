package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"onec-traders.backend/internal/config"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/internal/infrastructure/repositories"
	"onec-traders.backend/pkg/jwt"
)

var openAdminTokenDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

type tokenMinter interface {
	GenerateAccessToken(userID uuid.UUID, role string) (string, time.Time, error)
}

type adminTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (userLookup, io.Closer, error)
	minter  func(cfg *config.Config, expiry time.Duration) tokenMinter
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminTokenDeps() adminTokenDeps {
	return adminTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (userLookup, io.Closer, error) {
			db, err := openAdminTokenDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openAdminSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return repositories.NewUserRepository(db), sqlDB, nil
		},
		minter: func(cfg *config.Config, expiry time.Duration) tokenMinter {
			return jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, expiry)
		},
		out: os.Stdout,
	}
}

func parseUserID(userID string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, fmt.Errorf("--user-id is required")
	}
	return uuid.Parse(userID)
}

func runAdminToken(args []string, deps adminTokenDeps) error {
	def := defaultAdminTokenDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.minter == nil {
		deps.minter = def.minter
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("admin-token", flag.ContinueOnError)
	userIDFlag := fs.String("user-id", "", "admin user UUID (required)")
	ttlFlag := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := parseUserID(*userIDFlag)
	if err != nil {
		return err
	}
	if *ttlFlag <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	users, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	user, err := users.GetByID(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if !user.IsAdmin() {
		return fmt.Errorf("user %s is not admin (role=%s)", userID, user.Role)
	}

	token, expiresAt, err := deps.minter(cfg, *ttlFlag).GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return fmt.Errorf("failed minting token: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Minted admin access token")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID.String())
	_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", expiresAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(deps.out, "ACCESS_TOKEN=%s\n", token)
	return nil
}

func main() {
	if err := runAdminToken(os.Args[1:], defaultAdminTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
