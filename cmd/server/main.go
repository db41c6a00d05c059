package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"infographic-gateway/internal/api"
	"infographic-gateway/internal/config"
	"infographic-gateway/internal/gateway"
	"infographic-gateway/internal/security"
	"infographic-gateway/internal/store"
)

func main() {
	cfg := config.Load()

	var limiter gateway.RateLimiter = security.NewFixedWindowLimiter()
	var dedupe gateway.DuplicateDetector = security.NewDuplicateDetector()
	var queue gateway.RequestQueue = store.NewMemoryRequestStore()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		pingErr := redisClient.Ping(ctx).Err()
		cancel()
		if pingErr != nil {
			log.Fatalf("Redis 连接失败: %v", pingErr)
		}

		log.Printf("Redis 已连接，启用全局限流、去重与持久化队列")
		limiter = security.NewRedisFixedWindowLimiter(redisClient, cfg.RedisKeyPrefix)
		dedupe = security.NewRedisDuplicateDetector(redisClient, cfg.RedisKeyPrefix)
		queue = store.NewRedisRequestStore(redisClient, cfg.RequestListKey)
	} else {
		log.Printf("未配置 REDIS_ADDR，使用进程内风控与队列（仅限本地开发）")
	}

	gate := gateway.New(
		limiter,
		dedupe,
		queue,
		cfg.MaxMessageRunes,
		cfg.SubmitLimit,
		cfg.RateWindow,
		cfg.DuplicateWindow,
	)

	srv := api.NewServer(cfg, gate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Infographic Request Gateway 启动: :%s", cfg.Port)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("服务异常退出: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("关闭 Redis 连接失败: %v", err)
		}
	}
	log.Printf("服务已停止")
}
