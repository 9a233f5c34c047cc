package db

import (
	"database/sql"
	"fmt"
	"strings"

	"eve-refinery/internal/engine"
)

// ItemByID implements engine.Catalog.
func (d *DB) ItemByID(typeID int32) (*engine.Item, error) {
	var it engine.Item
	err := d.sql.QueryRow(
		"SELECT type_id, type_name, group_id, category_id FROM items WHERE type_id = ?", typeID,
	).Scan(&it.ID, &it.Name, &it.GroupID, &it.CategoryID)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Ref: fmt.Sprintf("%d", typeID)}
	}
	if err != nil {
		return nil, fmt.Errorf("item by id %d: %w", typeID, err)
	}
	return &it, nil
}

// ItemByName implements engine.Catalog. A name shared by multiple items is
// an AmbiguousError, never an arbitrary pick.
func (d *DB) ItemByName(name string) (*engine.Item, error) {
	rows, err := d.sql.Query(
		"SELECT type_id, type_name, group_id, category_id FROM items WHERE type_name = ? LIMIT 2", name,
	)
	if err != nil {
		return nil, fmt.Errorf("item by name %q: %w", name, err)
	}
	defer rows.Close()

	var matches []engine.Item
	for rows.Next() {
		var it engine.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.GroupID, &it.CategoryID); err != nil {
			return nil, err
		}
		matches = append(matches, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, &engine.NotFoundError{Ref: name}
	case 1:
		return &matches[0], nil
	default:
		var count int
		d.sql.QueryRow("SELECT COUNT(*) FROM items WHERE type_name = ?", name).Scan(&count)
		return nil, &engine.AmbiguousError{Name: name, Matches: count}
	}
}

// ItemsInGroup implements engine.Catalog.
func (d *DB) ItemsInGroup(groupID int32) ([]engine.Item, error) {
	rows, err := d.sql.Query(
		"SELECT type_id, type_name, group_id, category_id FROM items WHERE group_id = ? ORDER BY type_id", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("items in group %d: %w", groupID, err)
	}
	defer rows.Close()

	var items []engine.Item
	for rows.Next() {
		var it engine.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.GroupID, &it.CategoryID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// BlueprintOutputQuantity implements engine.Catalog.
func (d *DB) BlueprintOutputQuantity(typeID int32) (int, bool, error) {
	var qty int
	err := d.sql.QueryRow(
		"SELECT output_quantity FROM blueprints WHERE product_type_id = ?", typeID,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("blueprint output for %d: %w", typeID, err)
	}
	return qty, true, nil
}

// ReprocessableItems implements engine.BatchSource: every item with at
// least one reprocessing output, minus the excluded categories.
func (d *DB) ReprocessableItems(excludedCategoryIDs []int32) ([]engine.Item, error) {
	query := `
		SELECT DISTINCT i.type_id, i.type_name, i.group_id, i.category_id
		FROM items i
		JOIN reprocessing_outputs ro ON ro.item_type_id = i.type_id`
	args := make([]interface{}, 0, len(excludedCategoryIDs))
	if len(excludedCategoryIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(excludedCategoryIDs)), ",")
		query += " WHERE i.category_id NOT IN (" + placeholders + ")"
		for _, id := range excludedCategoryIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY i.type_name"

	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("reprocessable items: %w", err)
	}
	defer rows.Close()

	var items []engine.Item
	for rows.Next() {
		var it engine.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.GroupID, &it.CategoryID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ImportItems replaces or inserts catalog rows.
func (d *DB) ImportItems(items []engine.Item) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO items (type_id, type_name, group_id, category_id) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(it.ID, it.Name, it.GroupID, it.CategoryID); err != nil {
			return fmt.Errorf("import item %d: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// BlueprintRecord is one blueprint row for import.
type BlueprintRecord struct {
	BlueprintTypeID int32
	ProductTypeID   int32
	OutputQuantity  int
}

// ImportBlueprints replaces or inserts blueprint rows.
func (d *DB) ImportBlueprints(records []BlueprintRecord) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO blueprints (blueprint_type_id, product_type_id, output_quantity) VALUES (?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		qty := r.OutputQuantity
		if qty <= 0 {
			qty = 1
		}
		if _, err := stmt.Exec(r.BlueprintTypeID, r.ProductTypeID, qty); err != nil {
			return fmt.Errorf("import blueprint %d: %w", r.BlueprintTypeID, err)
		}
	}
	return tx.Commit()
}
