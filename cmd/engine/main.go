// Lead dialogue engine main entry point
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/knowledge"
	"github.com/lead-dialogue-engine/internal/server"
	"github.com/lead-dialogue-engine/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting lead dialogue engine")

	kbPath := getEnv("KNOWLEDGE_FILE", "config/knowledge.yaml")
	ctx, err := knowledge.LoadFile(kbPath)
	if err != nil {
		logger.Fatal("Failed to load knowledge base", zap.String("path", kbPath), zap.Error(err))
	}

	snap, err := knowledge.NewSnapshot(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create knowledge snapshot", zap.Error(err))
	}
	defer snap.Close()

	capacity := getEnvInt("SESSION_CAPACITY", session.DefaultCapacity)
	registry, err := session.NewRegistry(snap, capacity, logger)
	if err != nil {
		logger.Fatal("Failed to create session registry", zap.Error(err))
	}

	srv := server.New(registry, snap, kbPath, logger)

	port := getEnv("PORT", "8080")
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting",
			zap.String("port", port),
			zap.String("company", ctx.Company.Name),
			zap.Int("products", len(ctx.Products)),
			zap.Int("faqs", len(ctx.FAQs)))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
