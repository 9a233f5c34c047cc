package db

import (
	"fmt"

	"eve-refinery/internal/engine"
)

// BlueprintJobs implements engine.ManufacturingSource: every blueprint with
// its product and material bill, one query for the whole table.
func (d *DB) BlueprintJobs() ([]engine.BlueprintJob, error) {
	rows, err := d.sql.Query(`
		SELECT b.blueprint_type_id, b.product_type_id, COALESCE(i.type_name, ''), b.output_quantity,
		       mm.material_type_id, COALESCE(mi.type_name, ''), mm.quantity
		FROM blueprints b
		JOIN manufacturing_materials mm ON mm.blueprint_type_id = b.blueprint_type_id
		LEFT JOIN items i  ON i.type_id  = b.product_type_id
		LEFT JOIN items mi ON mi.type_id = mm.material_type_id
		ORDER BY b.blueprint_type_id, mm.material_type_id`)
	if err != nil {
		return nil, fmt.Errorf("blueprint jobs: %w", err)
	}
	defer rows.Close()

	var jobs []engine.BlueprintJob
	var current *engine.BlueprintJob
	for rows.Next() {
		var bpID, productID, matID int32
		var productName, matName string
		var outputQty int
		var matQty float64
		if err := rows.Scan(&bpID, &productID, &productName, &outputQty, &matID, &matName, &matQty); err != nil {
			return nil, err
		}
		if current == nil || current.BlueprintTypeID != bpID {
			jobs = append(jobs, engine.BlueprintJob{
				BlueprintTypeID: bpID,
				ProductTypeID:   productID,
				ProductName:     productName,
				OutputQuantity:  outputQty,
			})
			current = &jobs[len(jobs)-1]
		}
		current.Materials = append(current.Materials, engine.MaterialYield{
			TypeID:   matID,
			Name:     matName,
			Quantity: matQty,
		})
	}
	return jobs, rows.Err()
}

// MaterialRecord is one manufacturing bill-of-materials row for import.
type MaterialRecord struct {
	BlueprintTypeID int32
	MaterialTypeID  int32
	Quantity        float64
}

// ImportMaterials replaces or inserts manufacturing material rows.
func (d *DB) ImportMaterials(records []MaterialRecord) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO manufacturing_materials (blueprint_type_id, material_type_id, quantity) VALUES (?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.BlueprintTypeID, r.MaterialTypeID, r.Quantity); err != nil {
			return fmt.Errorf("import material %d/%d: %w", r.BlueprintTypeID, r.MaterialTypeID, err)
		}
	}
	return tx.Commit()
}
