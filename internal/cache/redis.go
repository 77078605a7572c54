package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelichko/ridepool/config"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

// GetSearch returns the cached result set for a filter, or nil on a
// miss.
func (c *RedisCache) GetSearch(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	data, err := c.client.Get(ctx, searchKey(filter)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rides []domain.Ride
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, filter domain.RideFilter, rides []domain.Ride) error {
	payload, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(filter), payload, c.searchTTL).Err()
}

func searchKey(filter domain.RideFilter) string {
	day := ""
	if filter.Date != nil {
		day = filter.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("cache:rides:search:%s:%s:%s", filter.Origin, filter.Destination, day)
}
