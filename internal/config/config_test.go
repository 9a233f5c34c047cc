package config

import (
	"testing"
)

func TestDefault_Values(t *testing.T) {
	p := Default()
	if p == nil {
		t.Fatal("Default() returned nil")
	}
	if p.BrokerFeePercent != 1.37 {
		t.Errorf("BrokerFeePercent = %v, want 1.37", p.BrokerFeePercent)
	}
	if p.SalesTaxPercent != 3.5 {
		t.Errorf("SalesTaxPercent = %v, want 3.5", p.SalesTaxPercent)
	}
	if p.BuyBufferPercent != 10 {
		t.Errorf("BuyBufferPercent = %v, want 10", p.BuyBufferPercent)
	}
	if p.AverageRelists != 3 {
		t.Errorf("AverageRelists = %v, want 3", p.AverageRelists)
	}
	if p.RelistDiscountPercent != 80 {
		t.Errorf("RelistDiscountPercent = %v, want 80", p.RelistDiscountPercent)
	}
	if p.ReprocessingCostPercent != 3.37 {
		t.Errorf("ReprocessingCostPercent = %v, want 3.37", p.ReprocessingCostPercent)
	}
	if p.YieldPercent != 55 {
		t.Errorf("YieldPercent = %v, want 55", p.YieldPercent)
	}
	if p.TopN != 30 {
		t.Errorf("TopN = %v, want 30", p.TopN)
	}
}

func TestDefault_ExcludedCategories(t *testing.T) {
	p := Default()
	want := map[int32]bool{6: true, 9: true, 16: true}
	if len(p.ExcludedCategoryIDs) != len(want) {
		t.Fatalf("ExcludedCategoryIDs len = %d, want %d", len(p.ExcludedCategoryIDs), len(want))
	}
	for _, id := range p.ExcludedCategoryIDs {
		if !want[id] {
			t.Errorf("unexpected excluded category %d", id)
		}
	}
}
