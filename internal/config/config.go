package config

// Params holds all valuation assumptions (in-memory representation).
// A Params value is passed into the engine per call so callers and tests
// can override assumptions without touching process-wide state.
// All percentages are in percent form (1.37 means 1.37%).
type Params struct {
	BrokerFeePercent      float64 `json:"broker_fee_percent"`      // fee for placing a standing order
	SalesTaxPercent       float64 `json:"sales_tax_percent"`       // tax on every sale
	BuyBufferPercent      float64 `json:"buy_buffer_percent"`      // expected price drift while an order sits unfilled
	AverageRelists        float64 `json:"average_relists"`         // how often an order is relisted before filling
	RelistDiscountPercent float64 `json:"relist_discount_percent"` // broker fee discount applied to relists

	ReprocessingCostPercent float64 `json:"reprocessing_cost_percent"` // base station service fee
	YieldPercent            float64 `json:"yield_percent"`             // reprocessing efficiency

	ManufacturingFeePercent float64 `json:"manufacturing_fee_percent"`
	MaterialEfficiency      int     `json:"material_efficiency"` // blueprint ME level, 0-10

	// Batch scan filters.
	MinModulePrice float64 `json:"min_module_price"`
	MaxModulePrice float64 `json:"max_module_price"`
	TopN           int     `json:"top_n"`

	// Category IDs excluded from batch analysis (ships, blueprints, skillbooks).
	ExcludedCategoryIDs []int32 `json:"excluded_category_ids"`
}

// Default returns Params with the documented default assumptions.
func Default() *Params {
	return &Params{
		BrokerFeePercent:        1.37,
		SalesTaxPercent:         3.5,
		BuyBufferPercent:        10,
		AverageRelists:          3,
		RelistDiscountPercent:   80,
		ReprocessingCostPercent: 3.37,
		YieldPercent:            55,
		ManufacturingFeePercent: 2,
		MaterialEfficiency:      0,
		MinModulePrice:          1,
		MaxModulePrice:          100_000,
		TopN:                    30,
		ExcludedCategoryIDs:     []int32{6, 9, 16}, // Ship, Blueprint, Skill
	}
}
