package fuzzwork

import (
	"fmt"

	"eve-refinery/internal/engine"
	"eve-refinery/internal/logger"
)

// PriceStore is the write-back seam for refreshed prices.
type PriceStore interface {
	AllItemTypeIDs() ([]int32, error)
	UpsertPrices(map[int32]engine.PriceQuote) error
}

// UpdatePrices refreshes the stored price table for every catalog item and
// returns how many types came back with live market data.
func UpdatePrices(c *Client, store PriceStore) (int, error) {
	ids, err := store.AllItemTypeIDs()
	if err != nil {
		return 0, fmt.Errorf("list type ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	logger.Info("Fuzzwork", fmt.Sprintf("Fetching prices for %d types...", len(ids)))
	prices := c.Prices(ids)

	live := 0
	for _, q := range prices {
		if q.BuyMax > 0 || q.SellMin > 0 {
			live++
		}
	}

	if err := store.UpsertPrices(prices); err != nil {
		return 0, fmt.Errorf("store prices: %w", err)
	}
	logger.Success("Fuzzwork", fmt.Sprintf("Stored %d quotes (%d with live data)", len(prices), live))
	return live, nil
}
