package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kevinaaaquil/library/backend/config"
	"github.com/kevinaaaquil/library/backend/handlers"
	"github.com/kevinaaaquil/library/backend/middleware"
	"github.com/kevinaaaquil/library/backend/service"
	"github.com/kevinaaaquil/library/backend/store"
	"github.com/kevinaaaquil/library/backend/utils"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := config.ValidateEnv(logger); err != nil {
		logger.Error("invalid environment", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	// nil interfaces below mean the backend is not configured
	var (
		emailLogs     service.EmailLogStore
		logReader     service.EmailLogReader
		settingsStore service.MailSettingsStore
		sealer        *utils.Sealer
	)
	if cfg.MongoURI != "" {
		mongo, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := mongo.Disconnect(context.Background()); err != nil {
				logger.Warn("mongodb disconnect", "error", err)
			}
		}()
		if err := mongo.EnsureIndexes(ctx); err != nil {
			logger.Warn("mongodb indexes", "error", err)
		}
		emailLogs, logReader = mongo, mongo
		if cfg.MailSettingsEncryptionKey != nil {
			if sealer, err = utils.NewSealer(cfg.MailSettingsEncryptionKey); err != nil {
				return err
			}
			settingsStore = mongo
		} else {
			logger.Warn("MAIL_SETTINGS_ENCRYPTION_KEY not set; mail settings are read from the environment only")
		}
	} else {
		logger.Warn("MONGODB_URI not set; email log and stored mail settings disabled")
	}

	var (
		blobs  *service.BlobService
		covers service.CoverStore
	)
	if cfg.S3Bucket != "" {
		blobs, err = service.NewBlobService(ctx, service.BlobConfig{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.BlobPublicBaseURL,
		}, logger)
		if err != nil {
			return err
		}
		covers = blobs
	} else {
		logger.Warn("AWS_S3_BUCKET not set; cover uploads disabled")
	}

	mailSettings := service.NewMailSettingsService(settingsStore, sealer, service.SMTPAccount{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		SenderEmail: cfg.MailSenderEmail,
		SenderName:  cfg.MailSenderName,
	}, cfg.DisplayLocation, logger)

	var mailer service.Mailer = service.LogMailer{Logger: logger}
	if cfg.SMTPHost != "" || settingsStore != nil {
		mailer = service.NewSMTPMailer(mailSettings)
	}
	dispatcher := service.NewDispatcher(mailer, emailLogs, logger, cfg.MailWorkers, 100)

	users := service.NewUserService(db, dispatcher, cfg.JWTSecret, cfg.HostURL, logger)
	if err := users.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Deps{
		DB:           db,
		JWT:          middleware.NewJWT(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, time.Duration(cfg.JWTExpirationDays)*24*time.Hour),
		CorsOrigins:  cfg.CorsOrigins,
		Users:        users,
		Authors:      service.NewAuthorService(db, logger),
		Genres:       service.NewGenreService(db, logger),
		Books:        service.NewBookService(db, covers, cfg.DisplayLocation, logger),
		Reservations: service.NewReservationService(db, dispatcher, cfg.DisplayLocation, logger),
		Home:         service.NewHomeService(db, cfg.DisplayLocation),
		Blobs:        blobs,
		EmailLogs:    service.NewEmailLogService(logReader),
		MailSettings: mailSettings,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("mail queue not drained", "error", err)
	}
	return nil
}
