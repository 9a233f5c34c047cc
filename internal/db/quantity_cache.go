package db

import (
	"database/sql"
	"fmt"
	"time"

	"eve-refinery/internal/engine"
)

// GetQuantity implements engine.QuantityCache. A nil entry means uncached.
func (d *DB) GetQuantity(typeID int32) (*engine.QuantityEntry, error) {
	var e engine.QuantityEntry
	var needsReview int
	err := d.sql.QueryRow(
		"SELECT input_quantity, source, needs_review FROM input_quantity_cache WHERE type_id = ?", typeID,
	).Scan(&e.Quantity, &e.Source, &needsReview)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("quantity cache get %d: %w", typeID, err)
	}
	e.NeedsReview = needsReview != 0
	return &e, nil
}

// PutQuantity implements engine.QuantityCache.
func (d *DB) PutQuantity(typeID int32, e engine.QuantityEntry) error {
	needsReview := 0
	if e.NeedsReview {
		needsReview = 1
	}
	_, err := d.sql.Exec(
		"INSERT OR REPLACE INTO input_quantity_cache (type_id, input_quantity, source, needs_review, resolved_at) VALUES (?, ?, ?, ?, ?)",
		typeID, e.Quantity, string(e.Source), needsReview, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("quantity cache put %d: %w", typeID, err)
	}
	return nil
}

// ClearQuantityCache drops every cached entry. Manual clearing is the only
// invalidation path; resolution never self-heals.
func (d *DB) ClearQuantityCache() error {
	_, err := d.sql.Exec("DELETE FROM input_quantity_cache")
	return err
}

// QuantityCacheStats summarizes the cache by resolution source.
type QuantityCacheStats struct {
	Total       int
	BySource    map[string]int
	NeedsReview int
}

// CacheStats reports how the cached quantities were resolved.
func (d *DB) CacheStats() (QuantityCacheStats, error) {
	stats := QuantityCacheStats{BySource: make(map[string]int)}
	rows, err := d.sql.Query(
		"SELECT source, needs_review, COUNT(*) FROM input_quantity_cache GROUP BY source, needs_review",
	)
	if err != nil {
		return stats, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var needsReview, count int
		if err := rows.Scan(&source, &needsReview, &count); err != nil {
			return stats, err
		}
		stats.Total += count
		stats.BySource[source] += count
		if needsReview != 0 {
			stats.NeedsReview += count
		}
	}
	return stats, rows.Err()
}
