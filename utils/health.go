package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"serenity/config"
)

// StoreProber reports whether the document store connection is usable.
// The connection manager satisfies it, so the snapshot reflects the
// manager's readiness view rather than a raw client ping.
type StoreProber interface {
	Ready(ctx context.Context) error
}

// HealthStatus is the last observed state of the service's backends.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// checkHealth takes one snapshot of every backend.
func checkHealth(ctx context.Context, redisClients []*redis.Client, store StoreProber) HealthStatus {
	redisHealth := make([]bool, 0, len(redisClients))
	for _, client := range redisClients {
		redisHealth = append(redisHealth, client.Ping(ctx).Err() == nil)
	}
	return HealthStatus{
		Mongo:     store.Ready(ctx) == nil,
		Redis:     redisHealth,
		CheckedAt: time.Now(),
	}
}

// StartHealthMonitor refreshes the snapshot on the configured interval.
func StartHealthMonitor(redisClients []*redis.Client, store StoreProber) {
	interval := time.Duration(config.AppConfig.HealthIntervalSec) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			status := checkHealth(ctx, redisClients, store)
			cancel()

			healthMu.Lock()
			currentHealth = status
			healthMu.Unlock()
		}
	}()
}
