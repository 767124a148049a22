package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

// negativeMarker caches "product not in catalog" so unknown products don't
// hammer the backing store on every evaluation.
const negativeMarker = "__missing__"

// CachedStore is a read-through Redis cache in front of a catalog Store.
// Cache failures degrade to the backing store; they are logged, never
// surfaced, because the catalog lookup itself already degrades gracefully.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) FindByID(ctx context.Context, productID id.ProductID) (domain.ProductCatalogEntry, error) {
	key := cacheKey(productID)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		if cached == negativeMarker {
			return domain.ProductCatalogEntry{}, sentinel.ErrNotFound
		}
		var entry domain.ProductCatalogEntry
		if err := json.Unmarshal([]byte(cached), &entry); err == nil {
			return entry, nil
		}
		// Corrupt cache entry; fall through to the store and overwrite.
	} else if !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.WarnContext(ctx, "catalog cache read failed",
			"product_id", productID,
			"error", err,
		)
	}

	entry, err := c.next.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			c.set(ctx, key, negativeMarker)
		}
		return domain.ProductCatalogEntry{}, err
	}

	if payload, marshalErr := json.Marshal(entry); marshalErr == nil {
		c.set(ctx, key, string(payload))
	}
	return entry, nil
}

func (c *CachedStore) set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed",
			"key", key,
			"error", err,
		)
	}
}

func cacheKey(productID id.ProductID) string {
	return fmt.Sprintf("vaxcert:catalog:%s", productID)
}
