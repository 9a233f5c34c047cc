package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"eve-refinery/internal/logger"
)

// SortKey selects the batch scan ranking.
type SortKey string

const (
	SortByReturn SortKey = "return_percent"
	SortByProfit SortKey = "profit_per_unit"
)

// BatchSource provides the bulk queries the analyzer needs. Loading prices
// and yields up front keeps the scan at two queries total instead of two
// per candidate item.
type BatchSource interface {
	// ReprocessableItems returns every catalog item with a non-empty yield
	// record, excluding the given category IDs.
	ReprocessableItems(excludedCategoryIDs []int32) ([]Item, error)
	AllPrices() (map[int32]PriceQuote, error)
	AllYields() (map[int32][]MaterialYield, error)
}

// AnalyzeParams configures a catalog-wide reprocessing scan.
type AnalyzeParams struct {
	Valuation       ValuationParams
	MinPrice        float64 // raw price band, in the module price mode's basis
	MaxPrice        float64
	TopN            int
	ExcludedTypeIDs map[int32]bool // caller-curated denylist
	ExcludedCats    []int32        // non-physical categories
	SortKey         SortKey
	Workers         int // bounded pool size, defaults to 8
}

// ScanRow is one per-item summary from a batch scan. Profit and return are
// normalized per unit of input, not per job.
type ScanRow struct {
	TypeID            int32   `json:"type_id"`
	TypeName          string  `json:"type_name"`
	RawPrice          float64 `json:"raw_price"` // mode-selected market price
	ModulePrice       float64 `json:"module_price"`
	InputQuantity     int     `json:"input_quantity"`
	TotalMineralValue float64 `json:"total_mineral_value"`
	NetValue          float64 `json:"net_value"`
	ProfitPerUnit     float64 `json:"profit_per_unit"`
	ReturnPercent     float64 `json:"return_percent"`
}

// Analyzer runs the reprocessing calculator over the whole catalog.
type Analyzer struct {
	Source   BatchSource
	Catalog  Catalog
	Resolver *Resolver
}

// NewAnalyzer creates an Analyzer over the given stores.
func NewAnalyzer(source BatchSource, catalog Catalog, resolver *Resolver) *Analyzer {
	return &Analyzer{Source: source, Catalog: catalog, Resolver: resolver}
}

// Analyze values every reprocessable item, filters by the price band and
// denylists, and returns the top rows by the chosen sort key. Per-item
// valuations run on a bounded pool; ordering is restored by the final sort,
// not by collection order.
func (a *Analyzer) Analyze(params AnalyzeParams, progress func(string)) ([]ScanRow, error) {
	if params.Workers <= 0 {
		params.Workers = 8
	}
	if progress == nil {
		progress = func(string) {}
	}

	progress("Listing reprocessable items...")
	items, err := a.Source.ReprocessableItems(params.ExcludedCats)
	if err != nil {
		return nil, fmt.Errorf("list reprocessable items: %w", err)
	}

	progress("Preloading prices and yields...")
	prices, err := a.Source.AllPrices()
	if err != nil {
		return nil, fmt.Errorf("preload prices: %w", err)
	}
	yields, err := a.Source.AllYields()
	if err != nil {
		return nil, fmt.Errorf("preload yields: %w", err)
	}

	calc := NewCalculator(a.Catalog, mapPrices(prices), mapYields(yields), a.Resolver)

	progress(fmt.Sprintf("Valuing %d candidates...", len(items)))
	var (
		mu   sync.Mutex
		rows []ScanRow
	)
	var g errgroup.Group
	g.SetLimit(params.Workers)

	for _, item := range items {
		item := item
		if params.ExcludedTypeIDs[item.ID] {
			continue
		}
		// Cheap pre-filter on the raw market price before paying for a
		// full valuation.
		raw := rawModulePrice(prices[item.ID], params.Valuation.ModulePriceMode)
		if raw < params.MinPrice || raw > params.MaxPrice {
			continue
		}

		g.Go(func() error {
			res, err := calc.ValueByID(item.ID, params.Valuation)
			if err != nil {
				if errors.Is(err, ErrNotReprocessable) || IsNotFound(err) {
					return nil
				}
				return err
			}
			if res.ModulePriceAfterCosts == 0 || res.TotalMineralValue == 0 {
				return nil
			}

			row := ScanRow{
				TypeID:            res.TypeID,
				TypeName:          res.TypeName,
				RawPrice:          res.ModulePriceBeforeCosts,
				ModulePrice:       res.ModulePriceAfterCosts,
				InputQuantity:     res.InputQuantity,
				TotalMineralValue: res.TotalMineralValue,
				NetValue:          res.NetValue,
				ProfitPerUnit:     res.NetValue / float64(res.InputQuantity),
				ReturnPercent:     res.ProfitMarginPercent,
			}
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if params.SortKey == SortByProfit {
			return rows[i].ProfitPerUnit > rows[j].ProfitPerUnit
		}
		return rows[i].ReturnPercent > rows[j].ReturnPercent
	})
	if params.TopN > 0 && len(rows) > params.TopN {
		rows = rows[:params.TopN]
	}

	logger.Info("Analyzer", fmt.Sprintf("Scan complete, %d rows kept of %d candidates", len(rows), len(items)))
	return rows, nil
}

func rawModulePrice(q PriceQuote, mode ModulePriceMode) float64 {
	if mode == ModuleSellMin {
		return q.SellMin
	}
	return q.BuyMax
}

// mapPrices adapts a preloaded price map to the PriceSource seam.
type mapPrices map[int32]PriceQuote

func (m mapPrices) Quote(typeID int32) (PriceQuote, error) {
	return m[typeID], nil
}

// mapYields adapts a preloaded yield map to the YieldSource seam.
type mapYields map[int32][]MaterialYield

func (m mapYields) ReprocessingYield(typeID int32) ([]MaterialYield, error) {
	return m[typeID], nil
}
