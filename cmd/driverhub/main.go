package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/fleetops/driverhub/auth"
	"github.com/fleetops/driverhub/config"
	"github.com/fleetops/driverhub/middleware/guard"
	"github.com/fleetops/driverhub/registry"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("driverhub"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
	appLog := lgr.GetLogger("app")

	cfg, err := config.Load()
	if err != nil {
		appLog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		appLog.Error("open database", "error", err)
		os.Exit(1)
	}

	if err := bootstrapSchema(ctx, db); err != nil {
		appLog.Error("bootstrap schema", "error", err)
		os.Exit(1)
	}

	accounts := auth.NewAccountsRepository(db)
	drivers := registry.NewDriversRepository(db)

	if err := seedAdminAccount(ctx, accounts, lgr.GetLogger("seed")); err != nil {
		appLog.Error("seed admin account", "error", err)
		os.Exit(1)
	}

	provider := auth.NewAccountProvider(accounts).
		WithLogger(lgr.GetLogger("auth:provider"))

	auther, err := auth.NewAuthenticator(provider, cfg)
	if err != nil {
		appLog.Error("initialize authenticator", "error", err)
		os.Exit(1)
	}
	auther.WithLogger(lgr.GetLogger("auth"))

	app := fiber.New(fiber.Config{
		AppName: "driverhub",
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth.RegisterAuthRoutes(app, func(c *auth.HTTPController) *auth.HTTPController {
		c.Auther = auther
		c.Accounts = accounts
		c.Logger = lgr.GetLogger("auth:ctrl")
		return c
	})

	api := app.Group("/api", guard.New(guard.Config{
		TokenValidator:  auther.TokenService(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		ContextEnricher: auth.WithClaimsContext,
	}))

	registry.RegisterDriverRoutes(api, func(c *registry.HTTPController) *registry.HTTPController {
		c.Drivers = drivers
		c.Logger = lgr.GetLogger("registry:ctrl")
		return c
	})

	go func() {
		appLog.Info("listening", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			appLog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := WaitExitSignal()
	appLog.Info("shutting down", "signal", sig.String())

	if err := app.Shutdown(); err != nil {
		appLog.Error("server shutdown", "error", err)
	}

	if err := db.Close(); err != nil {
		appLog.Error("close database", "error", err)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func bootstrapSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*auth.Account)(nil),
		(*registry.Driver)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

// seedAdminAccount provisions the first operator account so a fresh
// install can log in. Without DRIVERHUB_ADMIN_PASSWORD the step is
// skipped rather than inventing a credential.
func seedAdminAccount(ctx context.Context, accounts auth.Accounts, log glog.Logger) error {
	password := os.Getenv("DRIVERHUB_ADMIN_PASSWORD")
	if password == "" {
		log.Warn("skipping admin seed, DRIVERHUB_ADMIN_PASSWORD not set")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = accounts.GetOrCreate(ctx, &auth.Account{
		Username:     "admin",
		DisplayName:  "Administrator",
		Role:         auth.RoleAdmin,
		PasswordHash: hash,
	})

	return err
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
