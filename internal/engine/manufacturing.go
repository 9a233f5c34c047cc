package engine

import (
	"fmt"
	"sort"

	"eve-refinery/internal/logger"
)

// BlueprintJob is one manufacturable blueprint with its material bill.
type BlueprintJob struct {
	BlueprintTypeID int32           `json:"blueprint_type_id"`
	ProductTypeID   int32           `json:"product_type_id"`
	ProductName     string          `json:"product_name"`
	OutputQuantity  int             `json:"output_quantity"`
	Materials       []MaterialYield `json:"materials"` // quantity per run, before ME
}

// ManufacturingSource provides the blueprint bill-of-materials table.
type ManufacturingSource interface {
	BlueprintJobs() ([]BlueprintJob, error)
}

// ManufacturingParams configures a manufacturing profitability scan.
type ManufacturingParams struct {
	Fees                    FeeParams
	ManufacturingFeePercent float64
	MaterialEfficiency      int // ME level 0-10, 1% material reduction per level
	MinProfitPerUnit        float64
	TopN                    int
}

// BuildRow is one per-blueprint summary from a manufacturing scan.
type BuildRow struct {
	ProductTypeID    int32   `json:"product_type_id"`
	ProductName      string  `json:"product_name"`
	OutputQuantity   int     `json:"output_quantity"`
	ProductPrice     float64 `json:"product_price"` // lowest sell order
	MaterialCost     float64 `json:"material_cost"` // per run, ME applied
	ManufacturingFee float64 `json:"manufacturing_fee"`
	TotalCost        float64 `json:"total_cost"`
	Revenue          float64 `json:"revenue"` // per run, after sales tax
	ProfitPerUnit    float64 `json:"profit_per_unit"`
	TotalProfit      float64 `json:"total_profit"` // per run
	MarginPercent    float64 `json:"margin_percent"`
	MarginDefined    bool    `json:"margin_defined"`
}

// AnalyzeManufacturing ranks blueprints by per-run profit: materials bought
// from existing sell orders (ME reduction applied), the product sold into
// the market at the lowest sell price net of sales tax.
func AnalyzeManufacturing(src ManufacturingSource, prices PriceSource, params ManufacturingParams) ([]BuildRow, error) {
	jobs, err := src.BlueprintJobs()
	if err != nil {
		return nil, fmt.Errorf("list blueprint jobs: %w", err)
	}

	me := params.MaterialEfficiency
	if me < 0 {
		me = 0
	}
	if me > 10 {
		me = 10
	}
	meMult := 1 - float64(me)/100

	rows := make([]BuildRow, 0, len(jobs))
	for _, job := range jobs {
		if job.OutputQuantity <= 0 || len(job.Materials) == 0 {
			continue
		}

		materialCost := 0.0
		for _, mat := range job.Materials {
			q, err := prices.Quote(mat.TypeID)
			if err != nil {
				return nil, fmt.Errorf("price lookup %d: %w", mat.TypeID, err)
			}
			materialCost += mat.Quantity * meMult * params.Fees.CostToBuyFromSellOrder(q.SellMin)
		}

		pq, err := prices.Quote(job.ProductTypeID)
		if err != nil {
			return nil, fmt.Errorf("price lookup %d: %w", job.ProductTypeID, err)
		}
		if pq.SellMin == 0 {
			logger.Warn("Manufacturing", fmt.Sprintf("No sell price for %s, skipping", job.ProductName))
			continue
		}

		fee := materialCost * params.ManufacturingFeePercent / 100
		totalCost := materialCost + fee
		revenuePerUnit := params.Fees.ProceedsFromSellingIntoBuyOrder(pq.SellMin)
		revenue := revenuePerUnit * float64(job.OutputQuantity)

		row := BuildRow{
			ProductTypeID:    job.ProductTypeID,
			ProductName:      job.ProductName,
			OutputQuantity:   job.OutputQuantity,
			ProductPrice:     pq.SellMin,
			MaterialCost:     materialCost,
			ManufacturingFee: fee,
			TotalCost:        totalCost,
			Revenue:          revenue,
			ProfitPerUnit:    revenuePerUnit - totalCost/float64(job.OutputQuantity),
			TotalProfit:      revenue - totalCost,
		}
		if revenuePerUnit > 0 {
			row.MarginPercent = row.ProfitPerUnit / revenuePerUnit * 100
			row.MarginDefined = true
		}
		if row.ProfitPerUnit < params.MinProfitPerUnit {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TotalProfit > rows[j].TotalProfit
	})
	if params.TopN > 0 && len(rows) > params.TopN {
		rows = rows[:params.TopN]
	}
	return rows, nil
}
