package engine

// Item is immutable catalog reference data for one type.
type Item struct {
	ID         int32  `json:"type_id"`
	Name       string `json:"type_name"`
	GroupID    int32  `json:"group_id"`
	CategoryID int32  `json:"category_id"`
}

// PriceQuote holds the current best market prices for one type.
// A zero field means no live market data on that side.
type PriceQuote struct {
	BuyMax  float64 `json:"buy_max"`  // highest standing buy order
	SellMin float64 `json:"sell_min"` // lowest standing sell order
}

// MaterialYield is one reprocessing output line. Quantity is the amount of
// the material obtained by reprocessing exactly one unit of the parent item
// at 100% yield; per-unit normalization happens at import time.
type MaterialYield struct {
	TypeID   int32   `json:"material_type_id"`
	Name     string  `json:"material_name"`
	Quantity float64 `json:"quantity"`
}

// Catalog is the read-only item reference data seam.
type Catalog interface {
	// ItemByID returns *NotFoundError when the type does not exist.
	ItemByID(typeID int32) (*Item, error)
	// ItemByName returns *NotFoundError or *AmbiguousError.
	ItemByName(name string) (*Item, error)
	ItemsInGroup(groupID int32) ([]Item, error)
	// BlueprintOutputQuantity reports the declared output quantity of the
	// blueprint producing typeID, if one exists.
	BlueprintOutputQuantity(typeID int32) (int, bool, error)
}

// PriceSource is the read-only market price seam. Types without price data
// yield a zero PriceQuote and no error.
type PriceSource interface {
	Quote(typeID int32) (PriceQuote, error)
}

// YieldSource is the read-only reprocessing yield seam. An empty slice
// means the type cannot be reprocessed.
type YieldSource interface {
	ReprocessingYield(typeID int32) ([]MaterialYield, error)
}

// ModulePriceMode selects how the module being reprocessed is acquired.
type ModulePriceMode string

const (
	// ModuleBuyMax: place a standing buy order at the best buy price.
	ModuleBuyMax ModulePriceMode = "buy_max"
	// ModuleSellMin: buy immediately from the lowest sell order.
	ModuleSellMin ModulePriceMode = "sell_min"
)

// MineralPriceMode selects how reprocessed materials are disposed of.
type MineralPriceMode string

const (
	// MineralBuyMax: sell immediately into the best standing buy order.
	MineralBuyMax MineralPriceMode = "buy_max"
	// MineralSellMin: list a standing sell order at the lowest sell price.
	MineralSellMin MineralPriceMode = "sell_min"
)

// MaterialOutput is the valuation breakdown for a single reprocessing output.
type MaterialOutput struct {
	TypeID             int32   `json:"material_type_id"`
	Name               string  `json:"material_name"`
	PerUnitQuantity    float64 `json:"per_unit_quantity"`    // at 100% yield, per unit of input
	QuantityAfterYield float64 `json:"quantity_after_yield"` // per job, fractional by design
	Price              float64 `json:"price"`                // raw market price, mode-selected
	PriceAfterCosts    float64 `json:"price_after_costs"`
	Value              float64 `json:"value"` // QuantityAfterYield × PriceAfterCosts
}

// ValuationResult is the ephemeral outcome of one reprocessing valuation.
// ProfitMarginDefined/BreakevenDefined distinguish "undefined" from a valid
// zero; callers must check them before reading the paired value.
type ValuationResult struct {
	TypeID   int32  `json:"type_id"`
	TypeName string `json:"type_name"`

	ModulePriceMode  ModulePriceMode  `json:"module_price_mode"`
	MineralPriceMode MineralPriceMode `json:"mineral_price_mode"`

	InputQuantity       int            `json:"input_quantity"`
	QuantitySource      QuantitySource `json:"quantity_source"`
	QuantityNeedsReview bool           `json:"quantity_needs_review"`

	ModulePriceBeforeCosts float64 `json:"module_price_before_costs"`
	ModulePriceAfterCosts  float64 `json:"module_price_after_costs"`
	TotalModuleCost        float64 `json:"total_module_cost"` // per job of InputQuantity units

	YieldPercent                     float64 `json:"yield_percent"`
	EffectiveReprocessingCostPercent float64 `json:"effective_reprocessing_cost_percent"`
	ReprocessingCost                 float64 `json:"reprocessing_cost"`

	Outputs           []MaterialOutput `json:"outputs"`
	TotalMineralValue float64          `json:"total_mineral_value"`
	NetValue          float64          `json:"net_value"`

	ProfitMarginPercent float64 `json:"profit_margin_percent"`
	ProfitMarginDefined bool    `json:"profit_margin_defined"`

	BreakevenModulePrice float64 `json:"breakeven_module_price"` // before-costs basis
	BreakevenDefined     bool    `json:"breakeven_defined"`
}
