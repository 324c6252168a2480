// Package domain provides defenitions of all entities.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrCatalogUnavailable indicates that the catalog could not be loaded from the store.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrUnknownItem indicates that the identifier is not in the catalog for the requested kind.
	ErrUnknownItem = errors.New("unknown item")
)

// Kind categorizes catalog entries and cart lines.
type Kind string

// All item kinds the till sells or takes back.
const (
	KindCrate  Kind = "crate"
	KindBottle Kind = "bottle"
	KindEmpty  Kind = "empty"
)

// IsValid returns true if the kind is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindCrate, KindBottle, KindEmpty:
		return true
	}

	return false
}

// CatalogEntry holds pricing data for a single sellable or returnable item.
//
// UnitPrice is zero for empties; their deposit is the credit paid out on return.
type CatalogEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitDeposit decimal.Decimal `json:"unit_deposit"`
}

// Catalog is the immutable snapshot of available items keyed by identifier.
// It is loaded once at session start and never mutated afterwards.
type Catalog map[string]CatalogEntry

// Entry returns the entry for the given identifier if it exists under the given kind.
func (c Catalog) Entry(id string, kind Kind) (CatalogEntry, error) {
	entry, ok := c[id]
	if !ok || entry.Kind != kind {
		return CatalogEntry{}, ErrUnknownItem
	}

	return entry, nil
}
