package fuzzwork

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"eve-refinery/internal/engine"
	"eve-refinery/internal/logger"
)

const defaultBaseURL = "https://market.fuzzwork.co.uk"

// JitaStationID is the default price source station (Jita IV-4 CNAP).
const JitaStationID = 60003760

// batchSize is how many type IDs go into one aggregates call.
const batchSize = 100

// Client fetches price aggregates from the Fuzzwork Market API. Results are
// memoized in a TTL cache so a batch scan immediately after a refresh does
// not re-download anything.
type Client struct {
	http      *http.Client
	baseURL   string
	stationID int64
	cache     *gocache.Cache
}

// NewClient creates a Fuzzwork client for the given station.
func NewClient(stationID int64) *Client {
	if stationID == 0 {
		stationID = JitaStationID
	}
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   defaultBaseURL,
		stationID: stationID,
		cache:     gocache.New(15*time.Minute, 30*time.Minute),
	}
}

// aggregatesResponse is the wire shape of /aggregates/: a map keyed by the
// type ID as a string.
type aggregatesResponse map[string]struct {
	Buy struct {
		Max json.Number `json:"max"`
	} `json:"buy"`
	Sell struct {
		Min json.Number `json:"min"`
	} `json:"sell"`
}

// Prices fetches best buy/sell prices for the given type IDs, batched 100
// per call. A failed batch degrades to zero quotes for its members and is
// logged; partial price data is recoverable, a dead API is not worth
// aborting a scan over.
func (c *Client) Prices(typeIDs []int32) map[int32]engine.PriceQuote {
	prices := make(map[int32]engine.PriceQuote, len(typeIDs))

	var missing []int32
	for _, id := range typeIDs {
		if v, ok := c.cache.Get(strconv.Itoa(int(id))); ok {
			prices[id] = v.(engine.PriceQuote)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return prices
	}

	batches := (len(missing) + batchSize - 1) / batchSize
	for i := 0; i < len(missing); i += batchSize {
		end := i + batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[i:end]

		fetched, err := c.fetchBatch(batch)
		if err != nil {
			logger.Warn("Fuzzwork", fmt.Sprintf("Batch %d/%d failed: %v", i/batchSize+1, batches, err))
			for _, id := range batch {
				prices[id] = engine.PriceQuote{}
			}
			continue
		}
		for id, q := range fetched {
			prices[id] = q
			c.cache.SetDefault(strconv.Itoa(int(id)), q)
		}
		// Types the API omitted from the response have no market at all.
		for _, id := range batch {
			if _, ok := prices[id]; !ok {
				prices[id] = engine.PriceQuote{}
			}
		}
	}
	return prices
}

func (c *Client) fetchBatch(typeIDs []int32) (map[int32]engine.PriceQuote, error) {
	ids := make([]string, len(typeIDs))
	for i, id := range typeIDs {
		ids[i] = strconv.Itoa(int(id))
	}

	u := fmt.Sprintf("%s/aggregates/?station=%d&types=%s",
		c.baseURL, c.stationID, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "eve-refinery/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fuzzwork %d: %s", resp.StatusCode, string(body))
	}

	var agg aggregatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return nil, fmt.Errorf("decode aggregates: %w", err)
	}

	prices := make(map[int32]engine.PriceQuote, len(agg))
	for key, entry := range agg {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		var q engine.PriceQuote
		if f, err := entry.Buy.Max.Float64(); err == nil {
			q.BuyMax = f
		}
		if f, err := entry.Sell.Min.Float64(); err == nil {
			q.SellMin = f
		}
		prices[int32(id)] = q
	}
	return prices, nil
}
