package database

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/franckalain/lymegrove/internal/models"
)

// CachedDB keeps recently read scans in memory. Scans are immutable once
// saved, so entries only leave the cache on delete or eviction.
type CachedDB struct {
	DB
	cache *ristretto.Cache[string, *models.Scan]
}

// NewCachedDB wraps db with a read cache holding up to maxScans entries.
func NewCachedDB(db DB, maxScans int64) (*CachedDB, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *models.Scan]{
		NumCounters: maxScans * 10,
		MaxCost:     maxScans,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scan cache: %w", err)
	}
	return &CachedDB{DB: db, cache: c}, nil
}

func (c *CachedDB) GetScan(ctx context.Context, id, userID string) (*models.Scan, error) {
	if scan, found := c.cache.Get(id); found {
		if scan.UserID != userID {
			return nil, ErrNotFound
		}
		return scan, nil
	}

	scan, err := c.DB.GetScan(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(id, scan, 1)
	return scan, nil
}

func (c *CachedDB) DeleteScan(ctx context.Context, id, userID string) error {
	if err := c.DB.DeleteScan(ctx, id, userID); err != nil {
		return err
	}
	// Sets are buffered, so a Get here can miss an entry that is about to
	// land. Del is queued behind pending sets. A GetScan that read the row
	// before the delete and stores it after can still leave a stale entry
	// until eviction.
	c.cache.Del(id)
	return nil
}

func (c *CachedDB) Close() error {
	c.cache.Close()
	return c.DB.Close()
}
