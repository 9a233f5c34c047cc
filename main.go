package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"eve-refinery/internal/config"
	"eve-refinery/internal/db"
	"eve-refinery/internal/engine"
	"eve-refinery/internal/fuzzwork"
	"eve-refinery/internal/logger"
)

var version = "dev"

func main() {
	godotenv.Load()

	item := flag.String("item", "", "Value a single item by name or type ID")
	all := flag.Bool("all", false, "Scan all reprocessable items")
	manufacturing := flag.Bool("manufacturing", false, "Scan manufacturing profitability")
	updatePrices := flag.Bool("update-prices", false, "Refresh prices from the Fuzzwork Market API")
	populateCache := flag.Bool("populate-cache", false, "Resolve and cache input quantities for every item")
	clearCache := flag.Bool("clear-cache", false, "Clear the input quantity cache")

	yield := flag.Float64("yield", 0, "Reprocessing yield percent (default from config)")
	modulePrice := flag.String("module-price", "buy_max", "Module price mode: buy_max or sell_min")
	mineralPrice := flag.String("mineral-price", "buy_max", "Mineral price mode: buy_max or sell_min")
	minPrice := flag.Float64("min-price", 0, "Minimum raw module price for -all (default from config)")
	maxPrice := flag.Float64("max-price", 0, "Maximum raw module price for -all (default from config)")
	topN := flag.Int("top", 0, "Number of rows to show (default from config)")
	sortKey := flag.String("sort", "return_percent", "Sort key for -all: return_percent or profit_per_unit")
	exclude := flag.String("exclude", "", "Comma-separated type IDs to skip in -all")
	workers := flag.Int("workers", 8, "Parallel valuations for -all")
	me := flag.Int("me", 0, "Material efficiency level for -manufacturing")
	flag.Parse()

	logger.Banner(version)

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := config.Default()
	if *yield > 0 {
		cfg.YieldPercent = *yield
	}
	if *minPrice > 0 {
		cfg.MinModulePrice = *minPrice
	}
	if *maxPrice > 0 {
		cfg.MaxModulePrice = *maxPrice
	}
	if *topN > 0 {
		cfg.TopN = *topN
	}
	if *me > 0 {
		cfg.MaterialEfficiency = *me
	}

	moduleMode, mineralMode, err := parseModes(*modulePrice, *mineralPrice)
	if err != nil {
		logger.Error("Args", err.Error())
		os.Exit(1)
	}

	resolver := engine.NewResolver(database, database)
	valuation := engine.ValuationParams{
		YieldPercent:            cfg.YieldPercent,
		ReprocessingCostPercent: cfg.ReprocessingCostPercent,
		Fees:                    feesFrom(cfg),
		ModulePriceMode:         moduleMode,
		MineralPriceMode:        mineralMode,
	}

	switch {
	case *clearCache:
		if err := database.ClearQuantityCache(); err != nil {
			logger.Error("Cache", fmt.Sprintf("Clear failed: %v", err))
			os.Exit(1)
		}
		logger.Success("Cache", "Input quantity cache cleared")

	case *updatePrices:
		client := fuzzwork.NewClient(stationFromEnv())
		if _, err := fuzzwork.UpdatePrices(client, database); err != nil {
			logger.Error("Fuzzwork", fmt.Sprintf("Price update failed: %v", err))
			os.Exit(1)
		}

	case *populateCache:
		runPopulateCache(database, resolver)

	case *item != "":
		calc := engine.NewCalculator(database, database, database, resolver)
		res, err := valueItem(calc, *item, valuation)
		if err != nil {
			logger.Error("Calculator", err.Error())
			os.Exit(1)
		}
		fmt.Print(formatValuation(res))

	case *all:
		analyzer := engine.NewAnalyzer(database, database, resolver)
		rows, err := analyzer.Analyze(engine.AnalyzeParams{
			Valuation:       valuation,
			MinPrice:        cfg.MinModulePrice,
			MaxPrice:        cfg.MaxModulePrice,
			TopN:            cfg.TopN,
			ExcludedTypeIDs: parseExcluded(*exclude),
			ExcludedCats:    cfg.ExcludedCategoryIDs,
			SortKey:         engine.SortKey(*sortKey),
			Workers:         *workers,
		}, func(msg string) { logger.Info("Analyzer", msg) })
		if err != nil {
			logger.Error("Analyzer", fmt.Sprintf("Scan failed: %v", err))
			os.Exit(1)
		}
		fmt.Print(formatScanRows(rows))

	case *manufacturing:
		rows, err := engine.AnalyzeManufacturing(database, database, engine.ManufacturingParams{
			Fees:                    feesFrom(cfg),
			ManufacturingFeePercent: cfg.ManufacturingFeePercent,
			MaterialEfficiency:      cfg.MaterialEfficiency,
			TopN:                    cfg.TopN,
		})
		if err != nil {
			logger.Error("Manufacturing", fmt.Sprintf("Scan failed: %v", err))
			os.Exit(1)
		}
		fmt.Print(formatBuildRows(rows))

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// valueItem accepts either a type ID or a display name.
func valueItem(calc *engine.Calculator, ref string, p engine.ValuationParams) (*engine.ValuationResult, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return calc.ValueByID(int32(id), p)
	}
	return calc.ValueByName(ref, p)
}

func runPopulateCache(database *db.DB, resolver *engine.Resolver) {
	ids, err := database.AllItemTypeIDs()
	if err != nil {
		logger.Error("Cache", fmt.Sprintf("List items failed: %v", err))
		os.Exit(1)
	}
	logger.Info("Cache", fmt.Sprintf("Resolving input quantities for %d items...", len(ids)))
	for i, id := range ids {
		if _, err := resolver.Resolve(id); err != nil {
			logger.Error("Cache", fmt.Sprintf("Resolve %d failed: %v", id, err))
			os.Exit(1)
		}
		if (i+1)%1000 == 0 {
			logger.Info("Cache", fmt.Sprintf("Processed %d/%d items...", i+1, len(ids)))
		}
	}

	stats, err := database.CacheStats()
	if err != nil {
		logger.Error("Cache", fmt.Sprintf("Stats failed: %v", err))
		os.Exit(1)
	}
	logger.Section("Cache Statistics")
	logger.Stats("Total", stats.Total)
	logger.Stats("Blueprint", stats.BySource[string(engine.SourceBlueprint)])
	logger.Stats("Consensus", stats.BySource[string(engine.SourceGroupConsensus)])
	logger.Stats("Most frequent", stats.BySource[string(engine.SourceGroupMostFrequent)])
	logger.Stats("Default", stats.BySource[string(engine.SourceDefault)])
	logger.Stats("Needs review", stats.NeedsReview)
}

func parseModes(module, mineral string) (engine.ModulePriceMode, engine.MineralPriceMode, error) {
	var moduleMode engine.ModulePriceMode
	switch module {
	case "buy_max":
		moduleMode = engine.ModuleBuyMax
	case "sell_min":
		moduleMode = engine.ModuleSellMin
	default:
		return "", "", fmt.Errorf("invalid -module-price %q (want buy_max or sell_min)", module)
	}

	var mineralMode engine.MineralPriceMode
	switch mineral {
	case "buy_max":
		mineralMode = engine.MineralBuyMax
	case "sell_min":
		mineralMode = engine.MineralSellMin
	default:
		return "", "", fmt.Errorf("invalid -mineral-price %q (want buy_max or sell_min)", mineral)
	}
	return moduleMode, mineralMode, nil
}

func parseExcluded(s string) map[int32]bool {
	excluded := make(map[int32]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			logger.Warn("Args", fmt.Sprintf("Ignoring invalid type ID %q in -exclude", part))
			continue
		}
		excluded[int32(id)] = true
	}
	return excluded
}

func feesFrom(cfg *config.Params) engine.FeeParams {
	return engine.FeeParams{
		BrokerFeePercent:      cfg.BrokerFeePercent,
		SalesTaxPercent:       cfg.SalesTaxPercent,
		BuyBufferPercent:      cfg.BuyBufferPercent,
		AverageRelists:        cfg.AverageRelists,
		RelistDiscountPercent: cfg.RelistDiscountPercent,
	}
}

func stationFromEnv() int64 {
	if v := os.Getenv("FUZZWORK_STATION"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
		logger.Warn("Args", fmt.Sprintf("Invalid FUZZWORK_STATION %q, using Jita", v))
	}
	return fuzzwork.JitaStationID
}
