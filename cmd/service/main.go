package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/blinkroom/chat-service/internal/config"
	"github.com/blinkroom/chat-service/internal/infra"
	"github.com/blinkroom/chat-service/internal/pkg/validator"
	db "github.com/blinkroom/chat-service/internal/repository/postgres"
	"github.com/blinkroom/chat-service/internal/rest"
	"github.com/blinkroom/chat-service/internal/service/purge"
	"github.com/blinkroom/chat-service/internal/stream"
)

func main() {
	cfg := config.MustLoad()
	logger := logger_lib.New(cfg.Logger.Host, cfg.Logger.Port, cfg.Service.Name, cfg.Platform.Env)

	dbRepo := db.New(cfg)
	defer dbRepo.Close()

	publisher := stream.NewPublisher(cfg)
	defer publisher.Close()

	hub := stream.NewHub(logger)
	consumer := stream.NewConsumer(cfg, hub, logger)
	defer consumer.Close()

	vldtr := validator.New()

	handler := rest.New(dbRepo, publisher, vldtr, cfg.Room.Lifetime, cfg.Room.FetchLimit)
	purgeWorker := purge.New(dbRepo, publisher, cfg.Room.PurgeInterval, cfg.Room.Lifetime, logger)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return infra.LoggerHTTP(next, logger)
	})

	router.Get("/api/room/messages", handler.GetMessages)
	router.Post("/api/room/messages", handler.SendMessage)
	router.Post("/api/room/purge", handler.PurgeExpired)
	router.Get("/api/room/events", hub.ServeWS)
	router.Get("/healthz", handler.Health)
	router.Get("/readyz", handler.Ready)
	router.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Service.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		return consumer.Run(gCtx)
	})

	g.Go(func() error {
		return purgeWorker.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("server error: %v", err))
	}
}
