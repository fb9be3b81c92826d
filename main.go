package main

import (
	"context"
	"net/http"

	"markhub/config/database"
	"markhub/pkg/config"
	"markhub/pkg/logger"
	"markhub/router"
	"markhub/socket"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Debug)
	defer logger.Sync()

	db := database.Connect(cfg)
	defer db.Close()

	// Title cache is optional; without Redis every resolve hits the network.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := cache.Ping(context.Background()).Err(); err != nil {
			logger.Sugar.Warnf("Redis unreachable, title caching disabled: %v", err)
			cache = nil
		}
	}

	hub := socket.NewHub()
	go hub.Run()

	handler := router.Setup(cfg, db, hub, cache)

	logger.Sugar.Infof("Listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
