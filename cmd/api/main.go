package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/config"
	"alfredoptarigan/ats-analyzer/internal/handlers"
	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/repositories"
	"alfredoptarigan/ats-analyzer/internal/services"
)

func main() {
	var port, uploadPath string

	rootCmd := &cobra.Command{
		Use:          "api",
		Short:        "ATS resume analyzer HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Server.Port = port
			}
			if uploadPath != "" {
				cfg.Storage.UploadPath = uploadPath
			}
			return serve(cmd.Context(), cfg)
		},
	}
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	rootCmd.Flags().StringVar(&uploadPath, "upload-path", "", "upload directory (overrides UPLOAD_PATH)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}
	log.Info("config loaded", zap.String("env", cfg.Server.Env))

	// Audit log
	auditRepo := repositories.NewNoopAnalysisRepository()
	if cfg.Audit.Enabled {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			log.Error("failed to initialize database", zap.Error(err))
			return err
		}
		auditRepo = repositories.NewAnalysisRepository(db)
	}

	// Storage
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Error("failed to create upload directory", zap.Error(err))
		return err
	}

	// Gemini
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, services.GeminiOptions{
		Model:          cfg.Gemini.Model,
		Timeout:        cfg.Gemini.Timeout,
		MaxAttempts:    cfg.Gemini.MaxAttempts,
		InitialBackoff: cfg.Gemini.InitialBackoff,
	}, log.Named("gemini"))
	if err != nil {
		log.Error("failed to initialize gemini", zap.Error(err))
		return err
	}
	log.Info("gemini initialized", zap.String("model", cfg.Gemini.Model))

	analyzer := services.NewAnalyzerService(
		services.NewPDFParserService(),
		services.NewScorer(),
		geminiService,
		cfg.Analysis.MinResumeChars,
		log.Named("analyzer"),
	)

	sweeper := services.NewSweeper(storageService, cfg.Storage.SweepInterval, cfg.Storage.StaleAfter, log.Named("sweeper"))
	sweeper.Start(ctx)

	analyzeHandler := handlers.NewAnalyzeHandler(
		analyzer,
		storageService,
		auditRepo,
		cfg.Storage.MaxFileSize,
		log.Named("http"),
	)

	app := handlers.NewApp(analyzeHandler, handlers.AppOptions{
		MaxFileSize: cfg.Storage.MaxFileSize,
		AccessLog:   true,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		sweeper.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Error("failed to start server", zap.Error(err))
		return err
	}

	return nil
}
