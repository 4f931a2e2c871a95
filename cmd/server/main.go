package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercadolabs/taskqueue/internal/api"
	"github.com/mercadolabs/taskqueue/internal/config"
	"github.com/mercadolabs/taskqueue/internal/events"
	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, os.Getenv("ENV") != "production")
	log := logger.Get()
	log.Info().Msg("Starting taskqueue server...")

	q := taskqueue.New(
		cfg.Queue.Name,
		cfg.Queue.Threads,
		taskqueue.WithAdminTickInterval(cfg.Queue.AdminTickInterval),
	)
	defer func() {
		if err := q.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close queue")
		}
	}()

	var publisher events.Publisher
	if cfg.Events.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.Password,
			DB:       cfg.Events.DB,
		})
		publisher = events.NewRedisPubSub(redisClient, cfg.Events.Channel)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close event publisher")
			}
		}()
	}

	server := api.NewServer(cfg, q, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.Start(ctx)

	// Wire the queue's status observer to both the WebSocket hub and, if
	// enabled, the Redis mirror. Neither is ever read back into q: this
	// is strictly fan-out.
	hub := server.Hub()
	q.AddStatusChangedCallback(func(s taskqueue.Status) {
		hub.Broadcast(events.NewStatusEvent(cfg.Queue.Name, s))
		if publisher != nil {
			if err := publisher.Publish(ctx, events.NewStatusEvent(cfg.Queue.Name, s)); err != nil {
				log.Warn().Err(err).Msg("failed to mirror status change")
			}
		}
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	server.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
