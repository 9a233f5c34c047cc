package db

import (
	"errors"
	"path/filepath"
	"testing"

	"eve-refinery/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	t.Setenv("REFINERY_DB", filepath.Join(t.TempDir(), "test.db"))
	d, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func seedItems(t *testing.T, d *DB) {
	t.Helper()
	err := d.ImportItems([]engine.Item{
		{ID: 34, Name: "Tritanium", GroupID: 18, CategoryID: 4},
		{ID: 35, Name: "Pyerite", GroupID: 18, CategoryID: 4},
		{ID: 215, Name: "Iron Charge S", GroupID: 83, CategoryID: 8},
		{ID: 216, Name: "Lead Charge S", GroupID: 83, CategoryID: 8},
		{ID: 587, Name: "Rifter", GroupID: 25, CategoryID: 6},
	})
	if err != nil {
		t.Fatalf("ImportItems: %v", err)
	}
}

func TestOpen_MigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("REFINERY_DB", path)

	d, err := Open()
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	d.Close()

	// Reopening the same file must rerun migrations without error.
	d, err = Open()
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer d.Close()

	var version int
	if err := d.SqlDB().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestItemByID(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)

	it, err := d.ItemByID(34)
	if err != nil {
		t.Fatalf("ItemByID: %v", err)
	}
	if it.Name != "Tritanium" || it.GroupID != 18 || it.CategoryID != 4 {
		t.Errorf("item = %+v", it)
	}

	_, err = d.ItemByID(99999)
	if !engine.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestItemByName(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)

	it, err := d.ItemByName("Iron Charge S")
	if err != nil {
		t.Fatalf("ItemByName: %v", err)
	}
	if it.ID != 215 {
		t.Errorf("ID = %d, want 215", it.ID)
	}

	_, err = d.ItemByName("No Such Item")
	if !engine.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestItemByName_Ambiguous(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)
	err := d.ImportItems([]engine.Item{
		{ID: 999, Name: "Tritanium", GroupID: 1, CategoryID: 4},
		{ID: 998, Name: "Tritanium", GroupID: 1, CategoryID: 4},
	})
	if err != nil {
		t.Fatalf("ImportItems: %v", err)
	}

	_, err = d.ItemByName("Tritanium")
	if !engine.IsAmbiguous(err) {
		t.Fatalf("err = %v, want AmbiguousError", err)
	}
	var amb *engine.AmbiguousError
	if errors.As(err, &amb) && amb.Matches != 3 {
		t.Errorf("Matches = %d, want 3", amb.Matches)
	}
}

func TestItemsInGroup(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)

	items, err := d.ItemsInGroup(83)
	if err != nil {
		t.Fatalf("ItemsInGroup: %v", err)
	}
	if len(items) != 2 || items[0].ID != 215 || items[1].ID != 216 {
		t.Errorf("items = %+v", items)
	}
}

func TestBlueprintOutputQuantity(t *testing.T) {
	d := openTestDB(t)
	err := d.ImportBlueprints([]BlueprintRecord{
		{BlueprintTypeID: 901, ProductTypeID: 215, OutputQuantity: 5000},
		{BlueprintTypeID: 902, ProductTypeID: 216, OutputQuantity: 0}, // clamped to 1
	})
	if err != nil {
		t.Fatalf("ImportBlueprints: %v", err)
	}

	qty, ok, err := d.BlueprintOutputQuantity(215)
	if err != nil || !ok || qty != 5000 {
		t.Errorf("lookup 215 = (%d, %v, %v), want (5000, true, nil)", qty, ok, err)
	}
	qty, ok, err = d.BlueprintOutputQuantity(216)
	if err != nil || !ok || qty != 1 {
		t.Errorf("lookup 216 = (%d, %v, %v), want (1, true, nil)", qty, ok, err)
	}
	_, ok, err = d.BlueprintOutputQuantity(777)
	if err != nil || ok {
		t.Errorf("lookup 777 = (_, %v, %v), want a clean miss", ok, err)
	}
}

func TestReprocessableItems_ExcludesCategories(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)
	err := d.ImportYields([]YieldRecord{
		{ItemTypeID: 215, MaterialTypeID: 34, Quantity: 0.3, BatchSize: 1},
		{ItemTypeID: 587, MaterialTypeID: 34, Quantity: 5000, BatchSize: 1},
	})
	if err != nil {
		t.Fatalf("ImportYields: %v", err)
	}

	items, err := d.ReprocessableItems([]int32{6, 9, 16})
	if err != nil {
		t.Fatalf("ReprocessableItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != 215 {
		t.Fatalf("items = %+v, want only 215 (the Rifter is category 6)", items)
	}

	// Without exclusions the ship comes back too.
	items, err = d.ReprocessableItems(nil)
	if err != nil {
		t.Fatalf("ReprocessableItems: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("unfiltered items = %d, want 2", len(items))
	}
}

func TestPrices_RoundTrip(t *testing.T) {
	d := openTestDB(t)
	err := d.UpsertPrices(map[int32]engine.PriceQuote{
		34: {BuyMax: 4.5, SellMin: 5.2},
		35: {BuyMax: 10, SellMin: 12},
	})
	if err != nil {
		t.Fatalf("UpsertPrices: %v", err)
	}

	q, err := d.Quote(34)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.BuyMax != 4.5 || q.SellMin != 5.2 {
		t.Errorf("quote = %+v", q)
	}

	// Missing rows are a zero quote, not an error.
	q, err = d.Quote(99999)
	if err != nil || q.BuyMax != 0 || q.SellMin != 0 {
		t.Errorf("missing quote = (%+v, %v), want zero quote", q, err)
	}

	all, err := d.AllPrices()
	if err != nil {
		t.Fatalf("AllPrices: %v", err)
	}
	if len(all) != 2 || all[35].SellMin != 12 {
		t.Errorf("all prices = %+v", all)
	}
}

func TestImportYields_NormalizesBatchQuantities(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)
	err := d.ImportYields([]YieldRecord{
		// Batch export: 87 Tritanium per 100 charges.
		{ItemTypeID: 215, MaterialTypeID: 34, Quantity: 87, BatchSize: 100},
		// Per-unit export passes through untouched.
		{ItemTypeID: 216, MaterialTypeID: 34, Quantity: 0.5, BatchSize: 1},
	})
	if err != nil {
		t.Fatalf("ImportYields: %v", err)
	}

	y, err := d.ReprocessingYield(215)
	if err != nil {
		t.Fatalf("ReprocessingYield: %v", err)
	}
	if len(y) != 1 || y[0].Quantity != 0.87 {
		t.Fatalf("yield = %+v, want per-unit 0.87", y)
	}
	if y[0].Name != "Tritanium" {
		t.Errorf("material name = %q, want Tritanium", y[0].Name)
	}

	y, err = d.ReprocessingYield(216)
	if err != nil {
		t.Fatalf("ReprocessingYield: %v", err)
	}
	if len(y) != 1 || y[0].Quantity != 0.5 {
		t.Fatalf("yield = %+v, want 0.5", y)
	}

	// Non-reprocessable items read back as empty, not as an error.
	y, err = d.ReprocessingYield(34)
	if err != nil || len(y) != 0 {
		t.Errorf("mineral yield = (%+v, %v), want empty", y, err)
	}
}

func TestAllYields_GroupsByItem(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)
	err := d.ImportYields([]YieldRecord{
		{ItemTypeID: 215, MaterialTypeID: 34, Quantity: 0.3, BatchSize: 1},
		{ItemTypeID: 215, MaterialTypeID: 35, Quantity: 0.1, BatchSize: 1},
		{ItemTypeID: 216, MaterialTypeID: 34, Quantity: 0.6, BatchSize: 1},
	})
	if err != nil {
		t.Fatalf("ImportYields: %v", err)
	}

	all, err := d.AllYields()
	if err != nil {
		t.Fatalf("AllYields: %v", err)
	}
	if len(all) != 2 || len(all[215]) != 2 || len(all[216]) != 1 {
		t.Fatalf("all yields = %+v", all)
	}
}

func TestQuantityCache_RoundTrip(t *testing.T) {
	d := openTestDB(t)

	e, err := d.GetQuantity(215)
	if err != nil || e != nil {
		t.Fatalf("cold get = (%+v, %v), want nil miss", e, err)
	}

	put := engine.QuantityEntry{Quantity: 5000, Source: engine.SourceBlueprint}
	if err := d.PutQuantity(215, put); err != nil {
		t.Fatalf("PutQuantity: %v", err)
	}
	if err := d.PutQuantity(216, engine.QuantityEntry{Quantity: 100, Source: engine.SourceGroupMostFrequent, NeedsReview: true}); err != nil {
		t.Fatalf("PutQuantity: %v", err)
	}

	e, err = d.GetQuantity(215)
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	if e == nil || e.Quantity != 5000 || e.Source != engine.SourceBlueprint || e.NeedsReview {
		t.Errorf("entry = %+v", e)
	}

	e, err = d.GetQuantity(216)
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	if e == nil || !e.NeedsReview {
		t.Errorf("entry = %+v, want needs_review set", e)
	}

	stats, err := d.CacheStats()
	if err != nil {
		t.Fatalf("CacheStats: %v", err)
	}
	if stats.Total != 2 || stats.NeedsReview != 1 || stats.BySource["blueprint"] != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if err := d.ClearQuantityCache(); err != nil {
		t.Fatalf("ClearQuantityCache: %v", err)
	}
	e, err = d.GetQuantity(215)
	if err != nil || e != nil {
		t.Errorf("post-clear get = (%+v, %v), want nil miss", e, err)
	}
}

func TestAllItemTypeIDs(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)

	ids, err := d.AllItemTypeIDs()
	if err != nil {
		t.Fatalf("AllItemTypeIDs: %v", err)
	}
	if len(ids) != 5 || ids[0] != 34 {
		t.Errorf("ids = %v", ids)
	}
}

func TestBlueprintJobs_GroupsMaterials(t *testing.T) {
	d := openTestDB(t)
	seedItems(t, d)
	if err := d.ImportBlueprints([]BlueprintRecord{
		{BlueprintTypeID: 901, ProductTypeID: 215, OutputQuantity: 5000},
		{BlueprintTypeID: 902, ProductTypeID: 216, OutputQuantity: 5000},
	}); err != nil {
		t.Fatalf("ImportBlueprints: %v", err)
	}
	if err := d.ImportMaterials([]MaterialRecord{
		{BlueprintTypeID: 901, MaterialTypeID: 34, Quantity: 3000},
		{BlueprintTypeID: 901, MaterialTypeID: 35, Quantity: 500},
		{BlueprintTypeID: 902, MaterialTypeID: 34, Quantity: 4000},
	}); err != nil {
		t.Fatalf("ImportMaterials: %v", err)
	}

	jobs, err := d.BlueprintJobs()
	if err != nil {
		t.Fatalf("BlueprintJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	first := jobs[0]
	if first.BlueprintTypeID != 901 || first.ProductTypeID != 215 || first.ProductName != "Iron Charge S" {
		t.Errorf("first job = %+v", first)
	}
	if first.OutputQuantity != 5000 || len(first.Materials) != 2 {
		t.Errorf("first job = %+v", first)
	}
	if first.Materials[0].TypeID != 34 || first.Materials[0].Name != "Tritanium" || first.Materials[0].Quantity != 3000 {
		t.Errorf("first material = %+v", first.Materials[0])
	}
	if len(jobs[1].Materials) != 1 || jobs[1].Materials[0].Quantity != 4000 {
		t.Errorf("second job = %+v", jobs[1])
	}
}
