package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wkim/teamshop-backend/pkg/logger"
)

var client *redis.Client

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Init initializes the Redis connection. With an empty Host the blacklist
// degrades to a no-op (single-process dev setups).
func Init(cfg Config) error {
	if cfg.Host == "" {
		logger.Warn("Redis not configured, session blacklist disabled", nil)
		return nil
	}

	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

const blacklistPrefix = "session:blacklist:"

// BlacklistToken invalidates a session token until it would have expired
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return nil
	}
	if expiry <= 0 {
		return nil
	}
	return client.Set(ctx, blacklistPrefix+token, "1", expiry).Err()
}

// IsTokenBlacklisted reports whether a session token has been revoked.
// Errors are treated as "not blacklisted" so an unavailable Redis does not
// lock everyone out.
func IsTokenBlacklisted(ctx context.Context, token string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		logger.Warn("Blacklist lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return n > 0
}
