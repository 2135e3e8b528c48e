package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"stayhub/internal/domain"
)

// Client wraps redis for read-through caching of hot property records.
// The checkout path reads a property on every quote and intent creation,
// so a short TTL takes most of that load off the database.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func propertyKey(id int64) string {
	return fmt.Sprintf("property:%d", id)
}

// GetProperty returns the cached property or nil on a miss. Cache errors
// are returned so callers can decide to fall through to the database.
func (c *Client) GetProperty(ctx context.Context, id int64) (*domain.Property, error) {
	raw, err := c.rdb.Get(ctx, propertyKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p domain.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SetProperty(ctx context.Context, p *domain.Property) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, propertyKey(p.ID), raw, c.ttl).Err()
}

func (c *Client) InvalidateProperty(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, propertyKey(id)).Err()
}
