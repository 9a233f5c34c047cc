package engine

import (
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/singleflight"

	"eve-refinery/internal/logger"
)

// QuantitySource records which tier produced a resolved input quantity.
type QuantitySource string

const (
	SourceBlueprint         QuantitySource = "blueprint"
	SourceGroupConsensus    QuantitySource = "group_consensus"
	SourceGroupMostFrequent QuantitySource = "group_most_frequent"
	SourceDefault           QuantitySource = "default"
)

// QuantityEntry is a resolved input quantity with its provenance.
type QuantityEntry struct {
	Quantity    int            `json:"input_quantity"`
	Source      QuantitySource `json:"source"`
	NeedsReview bool           `json:"needs_review"`
}

// QuantityCache persists resolved quantities. Entries are written once and
// never invalidated automatically; a cached value wins over fresher
// blueprint data until it is cleared by hand.
type QuantityCache interface {
	GetQuantity(typeID int32) (*QuantityEntry, error)
	PutQuantity(typeID int32, e QuantityEntry) error
}

// Resolver determines how many units of an item must be reprocessed
// together for clean accounting. Resolution tiers, in order: cached value,
// the item's own blueprint output quantity, group consensus, group
// most-frequent, default 1.
type Resolver struct {
	catalog Catalog
	cache   QuantityCache
	group   singleflight.Group
}

// NewResolver creates a Resolver over the given catalog and cache store.
func NewResolver(catalog Catalog, cache QuantityCache) *Resolver {
	return &Resolver{catalog: catalog, cache: cache}
}

// Resolve returns the input quantity for typeID, computing and caching it
// on first use. Concurrent calls for the same item are coalesced so the
// computation runs once.
func (r *Resolver) Resolve(typeID int32) (QuantityEntry, error) {
	if entry, err := r.cache.GetQuantity(typeID); err != nil {
		return QuantityEntry{}, fmt.Errorf("quantity cache get %d: %w", typeID, err)
	} else if entry != nil {
		return *entry, nil
	}

	v, err, _ := r.group.Do(strconv.Itoa(int(typeID)), func() (interface{}, error) {
		// Re-check under singleflight: another caller may have just written.
		if entry, err := r.cache.GetQuantity(typeID); err != nil {
			return QuantityEntry{}, err
		} else if entry != nil {
			return *entry, nil
		}
		entry, err := r.compute(typeID)
		if err != nil {
			return QuantityEntry{}, err
		}
		if err := r.cache.PutQuantity(typeID, entry); err != nil {
			return QuantityEntry{}, fmt.Errorf("quantity cache put %d: %w", typeID, err)
		}
		return entry, nil
	})
	if err != nil {
		return QuantityEntry{}, err
	}
	return v.(QuantityEntry), nil
}

func (r *Resolver) compute(typeID int32) (QuantityEntry, error) {
	if qty, ok, err := r.catalog.BlueprintOutputQuantity(typeID); err != nil {
		return QuantityEntry{}, fmt.Errorf("blueprint lookup %d: %w", typeID, err)
	} else if ok {
		return QuantityEntry{Quantity: qty, Source: SourceBlueprint}, nil
	}

	item, err := r.catalog.ItemByID(typeID)
	if err != nil {
		if !IsNotFound(err) {
			return QuantityEntry{}, fmt.Errorf("catalog lookup %d: %w", typeID, err)
		}
		logger.Warn("Resolver", fmt.Sprintf("Type %d not in catalog, defaulting input quantity to 1", typeID))
		return QuantityEntry{Quantity: 1, Source: SourceDefault, NeedsReview: true}, nil
	}

	return r.resolveFromGroup(item)
}

// resolveFromGroup inspects the blueprint outputs of the item's group
// siblings. Unanimous agreement is adopted as-is; disagreement adopts the
// most frequent quantity with ties broken by the smallest quantity, which
// keeps the result deterministic across runs.
func (r *Resolver) resolveFromGroup(item *Item) (QuantityEntry, error) {
	siblings, err := r.catalog.ItemsInGroup(item.GroupID)
	if err != nil {
		return QuantityEntry{}, fmt.Errorf("group lookup %d: %w", item.GroupID, err)
	}

	counts := make(map[int]int)
	for _, sib := range siblings {
		qty, ok, err := r.catalog.BlueprintOutputQuantity(sib.ID)
		if err != nil {
			return QuantityEntry{}, fmt.Errorf("blueprint lookup %d: %w", sib.ID, err)
		}
		if ok {
			counts[qty]++
		}
	}

	if len(counts) == 0 {
		return QuantityEntry{Quantity: 1, Source: SourceDefault, NeedsReview: true}, nil
	}
	if len(counts) == 1 {
		for qty := range counts {
			return QuantityEntry{Quantity: qty, Source: SourceGroupConsensus}, nil
		}
	}

	quantities := make([]int, 0, len(counts))
	for qty := range counts {
		quantities = append(quantities, qty)
	}
	sort.Slice(quantities, func(i, j int) bool {
		if counts[quantities[i]] != counts[quantities[j]] {
			return counts[quantities[i]] > counts[quantities[j]]
		}
		return quantities[i] < quantities[j]
	})
	return QuantityEntry{Quantity: quantities[0], Source: SourceGroupMostFrequent, NeedsReview: true}, nil
}
