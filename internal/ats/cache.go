package ats

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const scoreKeyPrefix = "ats:score:"

// ScoreKey derives the cache key for a resume and job description pair.
func ScoreKey(resume, jd []byte) string {
	r := sha256.Sum256(resume)
	j := sha256.Sum256(jd)
	return scoreKeyPrefix + hex.EncodeToString(r[:]) + ":" + hex.EncodeToString(j[:])
}

// ValkeyCache keeps scores in Valkey with a TTL.
type ValkeyCache struct {
	client valkey.Client
	ttl    time.Duration
}

// NewValkeyCache connects to Valkey and verifies the connection.
func NewValkeyCache(ctx context.Context, address, password string, ttl time.Duration) (*ValkeyCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping Valkey: %w", err)
	}

	return &ValkeyCache{client: client, ttl: ttl}, nil
}

// GetScore returns the cached score for key, if any.
func (c *ValkeyCache) GetScore(ctx context.Context, key string) (float64, bool, error) {
	score, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsFloat64()
	if valkey.IsValkeyNil(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("unable to read score %s: %w", key, err)
	}
	return score, true, nil
}

// SetScore stores score under key. A non-positive TTL disables writes.
func (c *ValkeyCache) SetScore(ctx context.Context, key string, score float64) error {
	if c.ttl <= 0 {
		return nil
	}
	seconds := int64(c.ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := c.client.B().Setex().Key(key).Seconds(seconds).Value(fmt.Sprintf("%g", score)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("unable to cache score %s: %w", key, err)
	}
	return nil
}

// Close releases the connection.
func (c *ValkeyCache) Close() {
	c.client.Close()
}
