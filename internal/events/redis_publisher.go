package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher sends each event as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// DialRedisPublisher connects to addr and verifies the connection with PING.
func DialRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("events.DialRedisPublisher: missing redis address")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("events.DialRedisPublisher: redis ping: %w", err)
	}
	return NewRedisPublisher(rdb, channel), nil
}

func (p *RedisPublisher) PublishCertificateIssued(ctx context.Context, event model.CertificateIssuedEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("RedisPublisher.PublishCertificateIssued: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		middleware.GetLogger(ctx).Error("Failed to publish certificate event",
			"error", err,
			"channel", p.channel,
			"certificate_id", event.CertificateID.String(),
		)
		return fmt.Errorf("RedisPublisher.PublishCertificateIssued: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
