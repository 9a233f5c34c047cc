package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"eve-refinery/internal/engine"
)

func isk(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// formatValuation renders a single-item valuation report.
func formatValuation(r *engine.ValuationResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Reprocessing Value")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Item: %s (TypeID %d)\n", r.TypeName, r.TypeID)
	fmt.Fprintf(&b, "Price modes: module=%s  mineral=%s\n", r.ModulePriceMode, r.MineralPriceMode)
	fmt.Fprintf(&b, "Input quantity: %d (source: %s", r.InputQuantity, r.QuantitySource)
	if r.QuantityNeedsReview {
		b.WriteString(", needs review")
	}
	fmt.Fprintln(&b, ")")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Module price (before costs): %s ISK\n", isk(r.ModulePriceBeforeCosts))
	fmt.Fprintf(&b, "Module price (after costs):  %s ISK\n", isk(r.ModulePriceAfterCosts))
	fmt.Fprintf(&b, "Total module cost per job:   %s ISK\n", isk(r.TotalModuleCost))
	fmt.Fprintf(&b, "Reprocessing cost:           %s ISK (%.4f%% effective)\n",
		isk(r.ReprocessingCost), r.EffectiveReprocessingCostPercent)
	fmt.Fprintf(&b, "Yield: %.1f%%\n", r.YieldPercent)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Outputs:")
	fmt.Fprintf(&b, "  %-28s %12s %14s %16s\n", "Material", "Quantity", "Price (net)", "Value")
	fmt.Fprintln(&b, "  "+strings.Repeat("-", 74))
	for _, out := range r.Outputs {
		name := out.Name
		if name == "" {
			name = fmt.Sprintf("Type %d", out.TypeID)
		}
		fmt.Fprintf(&b, "  %-28s %12.3f %14s %16s\n",
			name, out.QuantityAfterYield, isk(out.PriceAfterCosts), isk(out.Value))
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Total mineral value:   %s ISK\n", isk(r.TotalMineralValue))
	fmt.Fprintf(&b, "Net reprocessing value: %s ISK\n", isk(r.NetValue))
	if r.ProfitMarginDefined {
		fmt.Fprintf(&b, "Profit margin:          %+.2f%%\n", r.ProfitMarginPercent)
	} else {
		fmt.Fprintln(&b, "Profit margin:          N/A (module cost is 0)")
	}
	if r.BreakevenDefined {
		fmt.Fprintf(&b, "Breakeven module price: %s ISK\n", isk(r.BreakevenModulePrice))
	} else {
		fmt.Fprintln(&b, "Breakeven module price: N/A (no mineral value)")
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

// formatScanRows renders the batch scan table.
func formatScanRows(rows []engine.ScanRow) string {
	if len(rows) == 0 {
		return "No results found.\n"
	}

	var b strings.Builder
	rule := strings.Repeat("=", 108)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Top %d items by reprocessing value\n", len(rows))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-5s %-40s %14s %5s %15s %12s\n",
		"Rank", "Item", "Module Price", "Qty", "Profit/Unit", "Return %")
	fmt.Fprintln(&b, strings.Repeat("-", 108))

	for i, row := range rows {
		name := row.TypeName
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		ret := humanize.CommafWithDigits(row.ReturnPercent, 2) + "%"
		if row.ReturnPercent > 999999 {
			ret = ">999,999%"
		}
		fmt.Fprintf(&b, "%-5d %-40s %14s %5d %15s %12s\n",
			i+1, name, isk(row.ModulePrice), row.InputQuantity, isk(row.ProfitPerUnit), ret)
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

// formatBuildRows renders the manufacturing scan table.
func formatBuildRows(rows []engine.BuildRow) string {
	if len(rows) == 0 {
		return "No profitable blueprints found.\n"
	}

	var b strings.Builder
	rule := strings.Repeat("=", 112)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Top %d blueprints by total profit per run\n", len(rows))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-5s %-40s %5s %14s %14s %14s %9s\n",
		"Rank", "Product", "Qty", "Total Cost", "Revenue", "Profit", "Margin")
	fmt.Fprintln(&b, strings.Repeat("-", 112))

	for i, row := range rows {
		name := row.ProductName
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		margin := "N/A"
		if row.MarginDefined {
			margin = fmt.Sprintf("%+.2f%%", row.MarginPercent)
		}
		fmt.Fprintf(&b, "%-5d %-40s %5d %14s %14s %14s %9s\n",
			i+1, name, row.OutputQuantity, isk(row.TotalCost), isk(row.Revenue), isk(row.TotalProfit), margin)
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}
