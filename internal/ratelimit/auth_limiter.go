package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/atomoco/atomo/internal/config"
)

const (
	keyAuthHandle = "auth:handle:%s"
	keyAuthIP     = "auth:ip:%s"
)

// AuthLimiter throttles login and signup attempts per handle and per
// source address. A nil limiter (rate limiting disabled) allows
// everything, so dev and test setups run without Redis.
type AuthLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAuthLimiter(cfg config.Config) (*AuthLimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.AuthRate <= 0 || cfg.AuthBurst <= 0 {
		return nil, errors.New("auth rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &AuthLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.AuthRate,
		burst:   cfg.AuthBurst,
	}, nil
}

func (l *AuthLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AuthLimiter) AllowHandle(ctx context.Context, handle string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	handle = strings.ToLower(strings.TrimSpace(handle))
	if handle == "" {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuthHandle, handle), l.rate, l.burst)
}

func (l *AuthLimiter) AllowIP(ctx context.Context, ip string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuthIP, ip), l.rate, l.burst)
}
