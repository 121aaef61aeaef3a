// Package main is the entry point of the fingerprint server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sdhash/api"
	"sdhash/api/handler"
	"sdhash/internal/config"
	"sdhash/internal/database"
	"sdhash/internal/imageprocessing"
	"sdhash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("application starting")

	hasherCfg, err := config.LoadProfile(cfg.Profile)
	fatalOnErr(err, "load hasher profile")
	hasher, err := imageprocessing.NewHasher(hasherCfg)
	fatalOnErr(err, "create hasher")
	log.Info("hasher ready",
		zap.Int("standard_width", hasher.StandardWidth()),
		zap.Ints("key_frames", hasher.KeyFrames()),
		zap.Int("dct_core_width", hasher.DCTCoreWidth()),
		zap.Int("dct_coeff_buckets", hasher.DCTCoeffBuckets()),
		zap.Float64("lower_bound_fp_rate", hasher.LowerBoundFPRate()),
	)

	if _, err := os.Stat(cfg.ImageDir); os.IsNotExist(err) {
		fatalOnErr(os.MkdirAll(cfg.ImageDir, 0o755), "create images directory")
		log.Info("created images directory", zap.String("path", cfg.ImageDir))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := database.NewImageDatabase(hasher, log, cfg.CacheTTL)
	if _, err := db.LoadSnapshot(cfg.IndexFile); err != nil {
		log.Warn("could not restore index snapshot", zap.Error(err))
	}
	_, err = db.LoadImages(ctx, cfg.ImageDir, cfg.Workers)
	fatalOnErr(err, "load images")

	gin.SetMode(cfg.GinMode)
	router := api.Router(&handler.Handler{
		DB:             db,
		ImageDir:       cfg.ImageDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	if err := db.Save(cfg.IndexFile); err != nil {
		log.Error("could not save index snapshot", zap.Error(err))
	}
	log.Info("server stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
