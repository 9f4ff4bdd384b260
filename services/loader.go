package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"airbnb-dashboard/models"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

type loadedTable struct {
	identity storage.SourceIdentity
	table    *models.CleanedTable
}

// DatasetLoader reads and cleans a source at most once per source identity.
//
// Cached tables are never invalidated while the identity is unchanged. When a
// source's identity changes (the file was replaced, the table re-seeded) the
// next Load cleans it again and replaces the cached table, recomputing the
// price threshold for the new content.
type DatasetLoader struct {
	logger  *utils.Logger
	cleaner *Cleaner

	mu     sync.RWMutex
	tables map[string]loadedTable
	flight singleflight.Group
	now    func() time.Time
}

// NewDatasetLoader creates a loader with an empty cache.
func NewDatasetLoader(logger *utils.Logger) *DatasetLoader {
	return &DatasetLoader{
		logger:  logger,
		cleaner: NewCleaner(logger),
		tables:  make(map[string]loadedTable),
		now:     time.Now,
	}
}

func cacheKey(id storage.SourceIdentity) string {
	return id.Kind + ":" + id.Location
}

func (l *DatasetLoader) cached(id storage.SourceIdentity) (*models.CleanedTable, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.tables[cacheKey(id)]
	if !ok || entry.identity != id {
		return nil, false
	}
	return entry.table, true
}

// Load returns the cleaned table for src. It fails with storage.ErrNotFound
// (wrapped) when the source is missing. A table with zero rows is returned
// without error; callers check Empty.
//
// Concurrent callers for the same identity share one read. Cancelling one
// caller's ctx abandons only its wait, never the read the others depend on.
func (l *DatasetLoader) Load(ctx context.Context, src storage.ListingSource) (*models.CleanedTable, error) {
	id, err := src.Identity(ctx)
	if err != nil {
		datasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("loader: %w", err)
	}

	if table, ok := l.cached(id); ok {
		datasetLoads.WithLabelValues("hit").Inc()
		return table, nil
	}

	// The shared read outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := l.flight.DoChan(id.String(), func() (interface{}, error) {
		if table, ok := l.cached(id); ok {
			return table, nil
		}
		return l.load(shared, src, id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			datasetLoads.WithLabelValues("error").Inc()
			return nil, res.Err
		}
		datasetLoads.WithLabelValues("miss").Inc()
		return res.Val.(*models.CleanedTable), nil
	case <-ctx.Done():
		datasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("loader: %w", ctx.Err())
	}
}

func (l *DatasetLoader) load(ctx context.Context, src storage.ListingSource, id storage.SourceIdentity) (*models.CleanedTable, error) {
	started := l.now()
	raw, err := src.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", id, err)
	}

	listings, stats := l.cleaner.Clean(raw)
	table := &models.CleanedTable{
		Source:   id.String(),
		Listings: listings,
		Stats:    stats,
		LoadedAt: l.now(),
	}

	l.mu.Lock()
	l.tables[cacheKey(id)] = loadedTable{identity: id, table: table}
	l.mu.Unlock()

	cleanedRows.Set(float64(table.Len()))
	if table.Empty() {
		l.logger.Warn("[loader] %s: no rows survived cleaning", id)
	} else {
		l.logger.Info("[loader] Loaded %s: %d listings in %v (price threshold $%.2f)",
			id, table.Len(), l.now().Sub(started).Round(time.Millisecond), stats.PriceThreshold)
	}
	return table, nil
}
