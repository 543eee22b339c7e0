package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/franckalain/lymegrove/internal/auth"
	"github.com/franckalain/lymegrove/internal/catalog"
	"github.com/franckalain/lymegrove/internal/config"
	"github.com/franckalain/lymegrove/internal/database"
	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/intake"
	"github.com/franckalain/lymegrove/internal/logging"
	"github.com/franckalain/lymegrove/internal/ml"
	"github.com/franckalain/lymegrove/internal/scan"
	"github.com/franckalain/lymegrove/internal/server"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	level := cfg.Log.Level
	if cfg.Server.Debug {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Initialize database
	var db database.DB
	sqlDB, err := database.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	db = sqlDB
	if cfg.Database.CacheSize > 0 {
		if db, err = database.NewCachedDB(sqlDB, cfg.Database.CacheSize); err != nil {
			sqlDB.Close()
			return err
		}
	}
	defer db.Close()

	cat := catalog.Default()
	if cfg.Analysis.CatalogPath != "" {
		if cat, err = catalog.LoadFile(cfg.Analysis.CatalogPath); err != nil {
			return err
		}
	}

	// Initialize the diagnosis model
	model, err := ml.NewModel("mock", ml.MockConfig{
		HealthyProbability: cfg.Analysis.HealthyProbability,
		Delay:              cfg.Analysis.Delay.Duration,
	}, ml.WithCatalog(cat))
	if err != nil {
		return err
	}
	if err := model.Load(context.Background()); err != nil {
		return err
	}

	policy, err := feedback.ParsePolicy(cfg.Feedback.Policy)
	if err != nil {
		return err
	}

	if cfg.Auth.Secret == "" {
		logger.Warn("auth.secret is not set, scan history endpoints will reject every request")
	}

	scans := scan.NewService(model, scan.Config{Persist: cfg.Analysis.Persist},
		scan.WithSaver(db),
		scan.WithLogger(logger.Named("scan")))

	srv := server.New(
		server.WithScanService(scans),
		server.WithScanStore(db),
		server.WithFeedbackRecorder(feedback.NewRecorder(db, db, policy, logger.Named("feedback"))),
		server.WithIntake(intake.NewService(intake.Config{
			SupportEmail: cfg.Intake.SupportEmail,
			Delay:        cfg.Intake.Delay.Duration,
		}, logger.Named("intake"))),
		server.WithCatalog(cat),
		server.WithTokens(auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL.Duration)),
		server.WithLogger(logger),
		server.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Duration),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("configuration loaded",
		zap.String("database", cfg.Database.Path),
		zap.Bool("persist_scans", cfg.Analysis.Persist),
		zap.String("feedback_policy", string(policy)))
	return srv.Run(ctx, ":"+cfg.Server.Port)
}
