package utils

import (
	"os"

	"polysplit/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv：REDIS_ENABLE=true 或设置了 REDIS_HOST 时返回客户端，否则返回 nil
// 约束：REDIS_DB 解析失败或为负时回退到 0
func OpenRedisFromEnv() *redis.Client {
	enabled := os.Getenv("REDIS_HOST") != ""
	if v := os.Getenv("REDIS_ENABLE"); v != "" {
		enabled = v == "true"
	}
	if !enabled {
		return nil
	}
	addr := envOr("REDIS_HOST", "127.0.0.1") + ":" + envOr("REDIS_PORT", "6379")
	db := envInt("REDIS_DB", 0)
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
