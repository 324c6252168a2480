package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrIndexOutOfRange indicates a removal position with no cart line.
	ErrIndexOutOfRange = errors.New("no cart line at that position")
	// ErrEmptyCart indicates that the cart has no lines to settle.
	ErrEmptyCart = errors.New("cart is empty")
)

// LineItem is a priced cart position. Quantity is always positive.
type LineItem struct {
	CatalogID   string          `json:"catalog_id"`
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitDeposit decimal.Decimal `json:"unit_deposit"`
}

// Total returns the monetary effect of the line: charge for crates and
// bottles (price plus deposit), credit for empties (deposit only).
func (li LineItem) Total() decimal.Decimal {
	quantity := decimal.NewFromInt32(li.Quantity)

	if li.Kind == KindEmpty {
		return li.UnitDeposit.Mul(quantity)
	}

	return li.UnitPrice.Add(li.UnitDeposit).Mul(quantity)
}

// Cart is the ordered, uncommitted set of line items for the current
// customer transaction. Insertion order is significant for display and
// positional removal.
type Cart struct {
	catalog Catalog
	lines   []LineItem
}

// NewCart returns an empty cart pricing its lines against the given catalog snapshot.
func NewCart(catalog Catalog) *Cart {
	return &Cart{catalog: catalog}
}

// AddLine validates the identifier against the catalog and appends a line.
// A line with the same identifier and kind is merged by summing quantities.
func (c *Cart) AddLine(catalogID string, kind Kind, quantity int32) (LineItem, error) {
	entry, err := c.catalog.Entry(catalogID, kind)
	if err != nil {
		return LineItem{}, err
	}

	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}

	for i := range c.lines {
		if c.lines[i].CatalogID == catalogID && c.lines[i].Kind == kind {
			c.lines[i].Quantity += quantity
			return c.lines[i], nil
		}
	}

	line := LineItem{
		CatalogID:   entry.ID,
		Name:        entry.Name,
		Kind:        entry.Kind,
		Quantity:    quantity,
		UnitPrice:   entry.UnitPrice,
		UnitDeposit: entry.UnitDeposit,
	}
	c.lines = append(c.lines, line)

	return line, nil
}

// RemoveLine deletes the line at the given zero-based position and returns it.
// Subsequent positions shift down by one.
func (c *Cart) RemoveLine(index int) (LineItem, error) {
	if index < 0 || index >= len(c.lines) {
		return LineItem{}, ErrIndexOutOfRange
	}

	removed := c.lines[index]
	c.lines = append(c.lines[:index], c.lines[index+1:]...)

	return removed, nil
}

// TotalCharge sums quantity * (price + deposit) over crate and bottle lines.
func (c *Cart) TotalCharge() decimal.Decimal {
	total := decimal.Zero

	for _, line := range c.lines {
		if line.Kind == KindEmpty {
			continue
		}

		total = total.Add(line.Total())
	}

	return total
}

// TotalCredit sums quantity * deposit over empty lines.
func (c *Cart) TotalCredit() decimal.Decimal {
	total := decimal.Zero

	for _, line := range c.lines {
		if line.Kind != KindEmpty {
			continue
		}

		total = total.Add(line.Total())
	}

	return total
}

// NetAmount is TotalCharge minus TotalCredit. Negative when the customer is owed cash.
func (c *Cart) NetAmount() decimal.Decimal {
	return c.TotalCharge().Sub(c.TotalCredit())
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsEmpty returns true if the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Len returns the number of cart lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []LineItem {
	lines := make([]LineItem, len(c.lines))
	copy(lines, c.lines)

	return lines
}
