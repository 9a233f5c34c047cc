package db

import (
	"database/sql"
	"fmt"
	"time"

	"eve-refinery/internal/engine"
)

// Quote implements engine.PriceSource. Types without a price row yield a
// zero quote; absence of market data is not an error here.
func (d *DB) Quote(typeID int32) (engine.PriceQuote, error) {
	var q engine.PriceQuote
	err := d.sql.QueryRow(
		"SELECT buy_max, sell_min FROM prices WHERE type_id = ?", typeID,
	).Scan(&q.BuyMax, &q.SellMin)
	if err == sql.ErrNoRows {
		return engine.PriceQuote{}, nil
	}
	if err != nil {
		return engine.PriceQuote{}, fmt.Errorf("quote %d: %w", typeID, err)
	}
	return q, nil
}

// AllPrices implements engine.BatchSource.
func (d *DB) AllPrices() (map[int32]engine.PriceQuote, error) {
	rows, err := d.sql.Query("SELECT type_id, buy_max, sell_min FROM prices")
	if err != nil {
		return nil, fmt.Errorf("all prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int32]engine.PriceQuote)
	for rows.Next() {
		var id int32
		var q engine.PriceQuote
		if err := rows.Scan(&id, &q.BuyMax, &q.SellMin); err != nil {
			return nil, err
		}
		prices[id] = q
	}
	return prices, rows.Err()
}

// UpsertPrices writes a batch of quotes, stamping them with the current time.
func (d *DB) UpsertPrices(quotes map[int32]engine.PriceQuote) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO prices (type_id, buy_max, sell_min, updated_at) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for id, q := range quotes {
		if _, err := stmt.Exec(id, q.BuyMax, q.SellMin, now); err != nil {
			return fmt.Errorf("upsert price %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// AllItemTypeIDs returns every catalog type ID, the refresh set for the
// price updater.
func (d *DB) AllItemTypeIDs() ([]int32, error) {
	rows, err := d.sql.Query("SELECT type_id FROM items ORDER BY type_id")
	if err != nil {
		return nil, fmt.Errorf("all item type ids: %w", err)
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
