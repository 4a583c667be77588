package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
)

// CachedRepository is a read-through, write-through Redis cache in front of
// another Repository. Cache failures are logged and never fail the call;
// the backing repository stays the source of truth.
//
// Delete leaves a short-lived tombstone so a miss-load that read the cart
// before the delete cannot put it back into the cache.
type CachedRepository struct {
	next         Repository
	client       *redis.Client
	baseTTL      time.Duration
	tombstoneTTL time.Duration
	group        singleflight.Group
	logger       logrus.FieldLogger
}

func NewCachedRepository(next Repository, client *redis.Client, logger logrus.FieldLogger) *CachedRepository {
	return &CachedRepository{
		next:         next,
		client:       client,
		baseTTL:      15 * time.Minute,
		tombstoneTTL: time.Minute,
		logger:       logger,
	}
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (*Cart, error) {
	if c, err := r.get(ctx, id); err == nil {
		metrics.CartCacheTotal.WithLabelValues("hit").Inc()
		return c, nil
	} else if !errors.Is(err, redis.Nil) {
		metrics.CartCacheTotal.WithLabelValues("error").Inc()
		r.logger.WithError(err).WithField("cart_id", id).Warn("cart cache read failed")
	} else {
		metrics.CartCacheTotal.WithLabelValues("miss").Inc()
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		c, err := r.next.FindByID(ctx, id)
		if err != nil || c == nil {
			return c, err
		}
		r.populate(ctx, c)
		return c.Snapshot(), nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing one load each get their own aggregate.
	switch v := v.(type) {
	case Snapshot:
		return FromSnapshot(v)
	default:
		return nil, nil
	}
}

func (r *CachedRepository) Save(ctx context.Context, c *Cart) error {
	if err := r.next.Save(ctx, c); err != nil {
		return err
	}
	if err := r.client.Del(ctx, tombstoneKey(c.ID())).Err(); err != nil {
		r.logger.WithError(err).WithField("cart_id", c.ID()).Warn("cart tombstone clear failed")
	}
	r.set(ctx, c)
	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.client.Set(ctx, tombstoneKey(id), 1, r.tombstoneTTL).Err(); err != nil {
		r.logger.WithError(err).WithField("cart_id", id).Warn("cart tombstone write failed")
	}
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.WithError(err).WithField("cart_id", id).Warn("cart cache delete failed")
	}
	return nil
}

func (r *CachedRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, cacheKey(id)).Result()
	if err == nil && n > 0 {
		return true, nil
	}
	return r.next.Exists(ctx, id)
}

func (r *CachedRepository) get(ctx context.Context, id string) (*Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return FromSnapshot(s)
}

func (r *CachedRepository) set(ctx context.Context, c *Cart) {
	data, ok := r.encode(c)
	if !ok {
		return
	}
	if err := r.client.Set(ctx, cacheKey(c.ID()), data, r.ttl()).Err(); err != nil {
		r.logger.WithError(err).WithField("cart_id", c.ID()).Warn("cart cache write failed")
	}
}

// populate caches a cart read from the backing store unless it was deleted
// meanwhile. The tombstone is watched so a concurrent Delete aborts the write.
func (r *CachedRepository) populate(ctx context.Context, c *Cart) {
	data, ok := r.encode(c)
	if !ok {
		return
	}
	tomb := tombstoneKey(c.ID())
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, tomb).Result()
		if err != nil || n > 0 {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(c.ID()), data, r.ttl())
			return nil
		})
		return err
	}, tomb)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		r.logger.WithError(err).WithField("cart_id", c.ID()).Warn("cart cache write failed")
	}
}

func (r *CachedRepository) encode(c *Cart) ([]byte, bool) {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		r.logger.WithError(err).WithField("cart_id", c.ID()).Warn("marshal cart failed")
		return nil, false
	}
	return data, true
}

func (r *CachedRepository) ttl() time.Duration {
	return r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
}

func cacheKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}

func tombstoneKey(id string) string {
	return fmt.Sprintf("cart:%s:deleted", id)
}

var _ Repository = (*CachedRepository)(nil)
