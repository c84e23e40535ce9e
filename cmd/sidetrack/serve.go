package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/sidetrack/internal/api"
	"github.com/terraincognita07/sidetrack/internal/config"
	"github.com/terraincognita07/sidetrack/internal/db"
	"github.com/terraincognita07/sidetrack/internal/mail"
	"github.com/terraincognita07/sidetrack/internal/offline"
	"github.com/terraincognita07/sidetrack/internal/services"
	"gorm.io/gorm"
)

const loginCodePurgeInterval = time.Hour

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and offline shell gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	time.Local = cfg.Location

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	repositories := db.NewRepositories(database)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	shell := shellController(lifecycleCtx, cfg, repositories)
	handler, err := api.NewHandler(database, api.Options{
		SecretKey:    cfg.SecretKey,
		CookieSecure: cfg.CookieSecure,
		AppBaseURL:   cfg.AppBaseURL,
		Mailer:       loginCodeMailer(lifecycleCtx, cfg),
		Shell:        shell,
	})
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "sidetrack",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(corsMiddlewareConfig(cfg.AllowedOrigins)))
	api.RegisterRoutes(app, handler)

	go purgeLoginCodes(lifecycleCtx, services.NewLoginService(repositories.LoginCodes, repositories.Users, nil))

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("sidetrack listening on http://0.0.0.0:%s (db: %s, tz: %s)", cfg.Port, databaseLabel(database, cfg), cfg.Location.String())
	err = app.Listen(":" + cfg.Port)
	settleShell(shell)
	return err
}

// settleShell waits for cache writes started by requests served before
// shutdown.
func settleShell(shell *offline.Controller) {
	if shell == nil {
		return
	}
	shell.Settle()
}

// corsMiddlewareConfig only allows credentials for an explicit origin list;
// fiber rejects credentials combined with the "*" default.
func corsMiddlewareConfig(origins []string) cors.Config {
	allowed := strings.Join(origins, ",")
	return cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowed != "" && allowed != "*",
	}
}

// loginCodeMailer returns nil when SES is not configured so codes are handed
// back to the caller instead.
func loginCodeMailer(ctx context.Context, cfg config.Config) services.CodeMailer {
	if !cfg.MailEnabled() {
		log.Printf("SES_SENDER or AWS_REGION unset: login codes are returned in responses")
		return nil
	}
	mailer, err := mail.NewSESMailer(ctx, cfg.AWSRegion, cfg.SESSender)
	if err != nil {
		log.Printf("mailer init failed, login codes are returned in responses: %v", err)
		return nil
	}
	return mailer
}

// shellController installs and activates the offline shell when an origin is
// configured. A failed install leaves the controller serving the most recent
// generation an earlier version stored, if any.
func shellController(ctx context.Context, cfg config.Config, repositories *db.Repositories) *offline.Controller {
	if !cfg.ShellEnabled() {
		return nil
	}

	controller := offline.NewController(
		cfg.ShellCacheVersion,
		offline.NewRecordStore(repositories.CachedAsset),
		offline.NewOriginNetwork(cfg.ShellOrigin, 0),
		log.Default(),
	)
	if err := controller.Install(ctx); err != nil {
		log.Printf("offline shell install failed: %v", err)
		if generation, ok := controller.Generation(ctx); ok {
			log.Printf("offline shell serving previous generation %s", generation)
		}
		return controller
	}
	if err := controller.Activate(ctx); err != nil {
		log.Printf("offline shell activate failed: %v", err)
	}
	return controller
}

func purgeLoginCodes(ctx context.Context, logins *services.LoginService) {
	ticker := time.NewTicker(loginCodePurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := logins.PurgeExpired(time.Now())
			if err != nil {
				log.Printf("purge login codes: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("purged %d expired login code(s)", removed)
			}
		}
	}
}

func databaseLabel(database *gorm.DB, cfg config.Config) string {
	if database.Dialector.Name() == db.DialectPostgres {
		return "postgres"
	}
	return cfg.DBPath
}
