package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"aspir_backend/internals/configs"
)

// ConnectRedis opens the FX-rate cache. Redis is optional; a nil
// client just means every rate lookup goes to the API or fallback.
func ConnectRedis(cfg *configs.AppConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable (%v), FX rates will not be cached", err)
		return nil
	}
	log.Println("✅ Redis connected")
	return rdb
}
