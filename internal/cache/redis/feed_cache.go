package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// feedTTL evicts snapshots no relayer is refreshing; resolution against a
// missing snapshot fails closed.
const feedTTL = 2 * time.Minute

// FeedCache implements domain.FeedSource over snapshots a relayer publishes
// into Redis. The engine parses the raw record bytes itself; the cache only
// carries them together with the slot the relayer captured them at.
//
// Key schema:
//
//	feed:{address} - hash with fields "data" (raw record) and "slot"
type FeedCache struct {
	rdb *redis.Client
}

// NewFeedCache creates a FeedCache backed by the given Client.
func NewFeedCache(c *Client) *FeedCache {
	return &FeedCache{rdb: c.Underlying()}
}

func feedKey(address string) string { return "feed:" + address }

// Publish stores a relayer-captured snapshot for a feed address.
func (fc *FeedCache) Publish(ctx context.Context, address string, snap domain.FeedSnapshot) error {
	key := feedKey(address)

	pipe := fc.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", snap.Data, "slot", strconv.FormatUint(snap.Slot, 10))
	pipe.Expire(ctx, key, feedTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: publish feed %s: %w", address, err)
	}
	return nil
}

// Snapshot returns the latest snapshot for a feed address. It returns
// domain.ErrNotFound when no relayer has published one.
func (fc *FeedCache) Snapshot(ctx context.Context, address string) (domain.FeedSnapshot, error) {
	vals, err := fc.rdb.HGetAll(ctx, feedKey(address)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.FeedSnapshot{}, domain.ErrNotFound
		}
		return domain.FeedSnapshot{}, fmt.Errorf("redis: get feed %s: %w", address, err)
	}
	if len(vals) == 0 {
		return domain.FeedSnapshot{}, domain.ErrNotFound
	}

	slot, err := strconv.ParseUint(vals["slot"], 10, 64)
	if err != nil {
		return domain.FeedSnapshot{}, fmt.Errorf("redis: parse feed slot %s: %w", address, err)
	}

	return domain.FeedSnapshot{
		Data: []byte(vals["data"]),
		Slot: slot,
	}, nil
}

// Compile-time interface check.
var _ domain.FeedSource = (*FeedCache)(nil)
