package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache stores computed summaries by range key. Entry resolves a range
// key to the storage key of the current generation; a caller reads and writes
// through that one entry so a summary computed before Invalidate is never
// stored as current. Invalidate drops every entry at once.
type SummaryCache interface {
	Entry(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, entry string) (*Summary, bool, error)
	Set(ctx context.Context, entry string, summary *Summary) error
	Invalidate(ctx context.Context) error
}

// NopSummaryCache is used when no Redis is configured.
type NopSummaryCache struct{}

func (NopSummaryCache) Entry(_ context.Context, key string) (string, error) { return key, nil }
func (NopSummaryCache) Get(context.Context, string) (*Summary, bool, error) { return nil, false, nil }
func (NopSummaryCache) Set(context.Context, string, *Summary) error         { return nil }
func (NopSummaryCache) Invalidate(context.Context) error                    { return nil }

const summaryGenerationKey = "summary:gen"

// RedisSummaryCache namespaces entries under a generation counter, so bumping
// the counter orphans every cached summary and lets the TTL reclaim them.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func (c *RedisSummaryCache) Get(ctx context.Context, entry string) (*Summary, bool, error) {
	raw, err := c.client.Get(ctx, entry).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", entry, err)
	}

	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", entry, err)
	}
	return &summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, entry string, summary *Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := c.client.Set(ctx, entry, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", entry, err)
	}
	return nil
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, summaryGenerationKey).Err(); err != nil {
		return fmt.Errorf("bump summary generation: %w", err)
	}
	return nil
}

// Entry pins key to the generation current at the time of the call.
func (c *RedisSummaryCache) Entry(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, summaryGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read summary generation: %w", err)
	}
	return fmt.Sprintf("summary:%d:%s", gen, key), nil
}
