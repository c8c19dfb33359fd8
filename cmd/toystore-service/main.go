package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/api"
	"github.com/longnd/toystore-service/internal/api/middleware"
	"github.com/longnd/toystore-service/pkg/config"
	"github.com/longnd/toystore-service/pkg/db"
	"github.com/longnd/toystore-service/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	dbCfg, err := db.LoadPostgresConfig()
	if err != nil {
		zlog.Fatal("failed to load db config", zap.Error(err))
	}

	conn, err := db.NewPostgresConnection(dbCfg)
	if err != nil {
		zlog.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close()

	handler, cartSvc := api.NewRouter(conn, cfg, zlog)

	r := chi.NewRouter()
	r.Use(middleware.Logger(zlog))
	r.Mount("/", handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// opportunistic cleanup of expired guest cart lines
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.CartSweepMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := cartSvc.Sweep(sweepCtx); err != nil {
					zlog.Error("cart sweep failed", zap.Error(err))
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			zlog.Error("HTTP server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	zlog.Info("starting toystore-service", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	zlog.Info("server stopped")
}
