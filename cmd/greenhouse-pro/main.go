package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/audit"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/config"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/database"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/dispatch"
	httpapi "github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/http"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/logger"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/mqtt"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/platform"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/repository"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/service"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "greenhouse-pro")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Redis is optional; without it the device-status endpoint just
	// hits the upstream platform on every poll.
	var kv store.KV
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, device-status caching disabled", zap.Error(err))
		} else {
			kv = store.NewRedisKV(redisClient)
			defer redisClient.Close()
		}
	}

	platformClient := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.LivenessTimeout, log)
	dispatcher := dispatch.NewDispatcher(platformClient, cfg.Platform.RPCTimeout, log)

	historyRepo := repository.NewPostgresControlHistoryRepo(db, log)
	notificationsRepo := repository.NewPostgresNotificationsRepo(db, log)
	settingsRepo := repository.NewPostgresNotificationSettingsRepo(db, log)
	usersRepo := repository.NewPostgresUsersRepo(db, log)

	notificationService := service.NewNotificationService(notificationsRepo, settingsRepo, usersRepo, log)
	controlService := service.NewControlService(dispatcher, historyRepo, audit.NewLogRecorder(log), notificationService, log)

	router := httpapi.NewRouter(log)
	router.RegisterControlRoutes(httpapi.NewControlHandler(controlService, platformClient, kv, log))
	router.RegisterNotificationRoutes(httpapi.NewNotificationHandler(notificationService, log))
	router.RegisterEventRoutes(httpapi.NewEventsHandler(notificationService, log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := service.NewRetentionSweeper(notificationsRepo, cfg.Notify.RetentionDays, cfg.Notify.SweepInterval, log)
	go sweeper.Run(ctx)

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer mqttClient.Close()

		bridge := mqtt.NewMonitorBridge(notificationService, log)
		if err := mqttClient.Subscribe(cfg.MQTT.Topic, 1, bridge.Handle); err != nil {
			log.Fatal("Failed to subscribe to monitor topic", zap.Error(err))
		}
		log.Info("Monitor bridge subscribed", zap.String("topic", cfg.MQTT.Topic))
	}

	server := service.NewServer(cfg.HTTP.Addr, router, log)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErrChan:
		log.Fatal("HTTP server error", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop HTTP server cleanly", zap.Error(err))
	}

	log.Info("Greenhouse service stopped")
}
