package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"

	"github.com/plitvinphd/azurepdf2png/internal/config"
	"github.com/plitvinphd/azurepdf2png/internal/delivery"
	"github.com/plitvinphd/azurepdf2png/internal/domain"
	"github.com/plitvinphd/azurepdf2png/internal/error_notificator"
	"github.com/plitvinphd/azurepdf2png/internal/fetch"
	"github.com/plitvinphd/azurepdf2png/internal/infra"
	"github.com/plitvinphd/azurepdf2png/internal/pdf"
)

const serviceName = "pdf2png"

func main() {

	// =========================================================================
	// CONFIG / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = lvl
	}
	baseLogger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	s3Client, err := infra.NewS3Client(ctx, cfg)
	cancel()
	if err != nil {
		zl.Log(logger.LogEntry{Level: "error", Message: "failed to init s3", Error: err, Service: serviceName})
		_ = baseLogger.Sync()
		os.Exit(1)
	}

	fetcher := fetch.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxPDFBytes)
	pdfConverter := pdf.NewFitzPDFConverter(cfg.MaxPages)
	errService := error_notificator.New(cfg.TelegramBotToken, cfg.TelegramAdminChatID)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	fetchService := fetch.NewService(fetcher)
	pdfService := pdf.NewPDFService(pdfConverter, cfg.DefaultDPI)
	s3Service := domain.NewS3Service(s3Client)

	convertService := domain.NewConvertService(
		fetchService,
		pdfService,
		s3Service,
		errService,
		cfg.UploadWorkers,
	)

	// =========================================================================
	// HTTP
	// =========================================================================

	convertHandler := delivery.NewConvertHandler(convertService, zl, cfg.MaxDPI)
	r := delivery.NewRouter(convertHandler, delivery.RouterOptions{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + srv.Addr,
			Service: serviceName,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErr:
		zl.Log(logger.LogEntry{Level: "error", Message: "server error", Error: err, Service: serviceName})
		// os.Exit не выполняет defer — сбрасываем логи сами
		_ = baseLogger.Sync()
		os.Exit(1)
	case <-quit:
	}

	zl.Log(logger.LogEntry{Level: "info", Message: "shutting down", Service: serviceName})

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Log(logger.LogEntry{Level: "error", Message: "shutdown failed", Error: err, Service: serviceName})
	}
}
