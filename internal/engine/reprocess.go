package engine

import (
	"fmt"

	"eve-refinery/internal/logger"
)

// ValuationParams are the per-call knobs of the reprocessing calculator.
type ValuationParams struct {
	YieldPercent            float64
	ReprocessingCostPercent float64 // base station fee, before yield scaling
	Fees                    FeeParams
	ModulePriceMode         ModulePriceMode
	MineralPriceMode        MineralPriceMode
}

// Calculator produces end-to-end reprocessing valuations. It owns no data;
// prices, yields, and the catalog arrive through the read-only seams.
type Calculator struct {
	Catalog  Catalog
	Prices   PriceSource
	Yields   YieldSource
	Resolver *Resolver
}

// NewCalculator wires a Calculator over the given data sources.
func NewCalculator(catalog Catalog, prices PriceSource, yields YieldSource, resolver *Resolver) *Calculator {
	return &Calculator{Catalog: catalog, Prices: prices, Yields: yields, Resolver: resolver}
}

// ValueByName values the item with the given display name. Ambiguous and
// unknown names are returned as errors, never silently resolved.
func (c *Calculator) ValueByName(name string, p ValuationParams) (*ValuationResult, error) {
	item, err := c.Catalog.ItemByName(name)
	if err != nil {
		return nil, err
	}
	return c.value(item, p)
}

// ValueByID values the item with the given type ID.
func (c *Calculator) ValueByID(typeID int32, p ValuationParams) (*ValuationResult, error) {
	item, err := c.Catalog.ItemByID(typeID)
	if err != nil {
		return nil, err
	}
	return c.value(item, p)
}

func (c *Calculator) value(item *Item, p ValuationParams) (*ValuationResult, error) {
	yields, err := c.Yields.ReprocessingYield(item.ID)
	if err != nil {
		return nil, fmt.Errorf("yield lookup %d: %w", item.ID, err)
	}
	if len(yields) == 0 {
		return nil, fmt.Errorf("%s (%d): %w", item.Name, item.ID, ErrNotReprocessable)
	}

	quote, err := c.Prices.Quote(item.ID)
	if err != nil {
		return nil, fmt.Errorf("price lookup %d: %w", item.ID, err)
	}
	priceBefore, priceAfter := modulePrice(quote, p)
	if priceBefore == 0 {
		logger.Warn("Calculator", fmt.Sprintf("No %s price for %s, using 0", p.ModulePriceMode, item.Name))
	}

	entry, err := c.Resolver.Resolve(item.ID)
	if err != nil {
		return nil, err
	}
	inputQty := entry.Quantity

	totalModuleCost := priceAfter * float64(inputQty)

	// The station fee scales with how much material is actually extracted.
	effCostPercent := p.ReprocessingCostPercent * (p.YieldPercent / 100)
	reprocessingCost := totalModuleCost * effCostPercent / 100

	yieldMult := p.YieldPercent / 100
	outputs := make([]MaterialOutput, 0, len(yields))
	totalMineralValue := 0.0
	for _, y := range yields {
		mq, err := c.Prices.Quote(y.TypeID)
		if err != nil {
			return nil, fmt.Errorf("price lookup %d: %w", y.TypeID, err)
		}
		raw, after := mineralPrice(mq, p)
		if raw == 0 {
			logger.Warn("Calculator", fmt.Sprintf("No %s price for material %s, using 0", p.MineralPriceMode, y.Name))
		}
		// Fractional quantities are kept throughout; rounding per material
		// would compound error across the output list.
		qtyAfterYield := y.Quantity * yieldMult * float64(inputQty)
		value := qtyAfterYield * after
		totalMineralValue += value
		outputs = append(outputs, MaterialOutput{
			TypeID:             y.TypeID,
			Name:               y.Name,
			PerUnitQuantity:    y.Quantity,
			QuantityAfterYield: qtyAfterYield,
			Price:              raw,
			PriceAfterCosts:    after,
			Value:              value,
		})
	}

	res := &ValuationResult{
		TypeID:                           item.ID,
		TypeName:                         item.Name,
		ModulePriceMode:                  p.ModulePriceMode,
		MineralPriceMode:                 p.MineralPriceMode,
		InputQuantity:                    inputQty,
		QuantitySource:                   entry.Source,
		QuantityNeedsReview:              entry.NeedsReview,
		ModulePriceBeforeCosts:           priceBefore,
		ModulePriceAfterCosts:            priceAfter,
		TotalModuleCost:                  totalModuleCost,
		YieldPercent:                     p.YieldPercent,
		EffectiveReprocessingCostPercent: effCostPercent,
		ReprocessingCost:                 reprocessingCost,
		Outputs:                          outputs,
		TotalMineralValue:                totalMineralValue,
		NetValue:                         totalMineralValue - totalModuleCost - reprocessingCost,
	}

	if totalModuleCost > 0 {
		res.ProfitMarginPercent = res.NetValue / totalModuleCost * 100
		res.ProfitMarginDefined = true
	}

	// Breakeven in the before-costs basis. All fee primitives are linear
	// through the origin, so the after/before cost multiplier is the
	// primitive evaluated at price 1. Net value is
	//   M − P·k·q·(1 + r)
	// with M = mineral value, k = cost multiplier, q = input quantity and
	// r = effective reprocessing cost fraction; the root is M/(1+r)/(k·q).
	k := moduleCostMultiplier(p)
	if totalMineralValue > 0 && inputQty > 0 && k > 0 {
		res.BreakevenModulePrice = totalMineralValue / (1 + effCostPercent/100) / (k * float64(inputQty))
		res.BreakevenDefined = true
	}

	return res, nil
}

// modulePrice selects the raw acquisition price by mode and applies the
// matching fee primitive.
func modulePrice(q PriceQuote, p ValuationParams) (before, after float64) {
	switch p.ModulePriceMode {
	case ModuleSellMin:
		return q.SellMin, p.Fees.CostToBuyFromSellOrder(q.SellMin)
	default: // ModuleBuyMax
		return q.BuyMax, p.Fees.CostToPlaceBuyOrder(q.BuyMax)
	}
}

// mineralPrice selects the raw disposal price by mode and applies the
// matching fee primitive.
func mineralPrice(q PriceQuote, p ValuationParams) (raw, after float64) {
	switch p.MineralPriceMode {
	case MineralSellMin:
		return q.SellMin, p.Fees.ProceedsFromSellOrder(q.SellMin)
	default: // MineralBuyMax
		return q.BuyMax, p.Fees.ProceedsFromSellingIntoBuyOrder(q.BuyMax)
	}
}

func moduleCostMultiplier(p ValuationParams) float64 {
	switch p.ModulePriceMode {
	case ModuleSellMin:
		return p.Fees.CostToBuyFromSellOrder(1)
	default:
		return p.Fees.CostToPlaceBuyOrder(1)
	}
}
