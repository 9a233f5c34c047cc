package db

import (
	"fmt"

	"eve-refinery/internal/engine"
)

// ReprocessingYield implements engine.YieldSource. Quantities are per unit
// of input; an empty result means the item cannot be reprocessed.
func (d *DB) ReprocessingYield(typeID int32) ([]engine.MaterialYield, error) {
	rows, err := d.sql.Query(`
		SELECT ro.material_type_id, COALESCE(i.type_name, ''), ro.quantity
		FROM reprocessing_outputs ro
		LEFT JOIN items i ON i.type_id = ro.material_type_id
		WHERE ro.item_type_id = ?
		ORDER BY ro.material_type_id`, typeID)
	if err != nil {
		return nil, fmt.Errorf("yield %d: %w", typeID, err)
	}
	defer rows.Close()

	var yields []engine.MaterialYield
	for rows.Next() {
		var y engine.MaterialYield
		if err := rows.Scan(&y.TypeID, &y.Name, &y.Quantity); err != nil {
			return nil, err
		}
		yields = append(yields, y)
	}
	return yields, rows.Err()
}

// AllYields implements engine.BatchSource.
func (d *DB) AllYields() (map[int32][]engine.MaterialYield, error) {
	rows, err := d.sql.Query(`
		SELECT ro.item_type_id, ro.material_type_id, COALESCE(i.type_name, ''), ro.quantity
		FROM reprocessing_outputs ro
		LEFT JOIN items i ON i.type_id = ro.material_type_id
		ORDER BY ro.item_type_id, ro.material_type_id`)
	if err != nil {
		return nil, fmt.Errorf("all yields: %w", err)
	}
	defer rows.Close()

	yields := make(map[int32][]engine.MaterialYield)
	for rows.Next() {
		var itemID int32
		var y engine.MaterialYield
		if err := rows.Scan(&itemID, &y.TypeID, &y.Name, &y.Quantity); err != nil {
			return nil, err
		}
		yields[itemID] = append(yields[itemID], y)
	}
	return yields, rows.Err()
}

// YieldRecord is one reprocessing output row for import. Quantity is the
// raw export value: the output for reprocessing BatchSize units together.
// Historic exports carried batch quantities (100 for charges, 5000 for
// missiles); current ones are per-unit with BatchSize 1.
type YieldRecord struct {
	ItemTypeID     int32
	MaterialTypeID int32
	Quantity       float64
	BatchSize      int
}

// ImportYields normalizes records to per-unit quantities and stores them.
// Everything past this boundary assumes per-unit semantics.
func (d *DB) ImportYields(records []YieldRecord) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO reprocessing_outputs (item_type_id, material_type_id, quantity) VALUES (?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		perUnit := r.Quantity
		if r.BatchSize > 1 {
			perUnit = r.Quantity / float64(r.BatchSize)
		}
		if _, err := stmt.Exec(r.ItemTypeID, r.MaterialTypeID, perUnit); err != nil {
			return fmt.Errorf("import yield %d/%d: %w", r.ItemTypeID, r.MaterialTypeID, err)
		}
	}
	return tx.Commit()
}
