// Package cart holds the shopping cart owned by a single browser session.
package cart

import (
	"encoding/json"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Cart is an ordered collection of line items, one per product, in the order
// products were first added. A Cart is not safe for concurrent use; the
// storefront serializes access per session.
type Cart struct {
	items []domain.CartLineItem
}

func New() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of the product's line item, or appends a new
// line item with quantity 1.
func (c *Cart) AddItem(p domain.Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, domain.CartLineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	})
}

// UpdateQuantity sets the quantity of a line item. A quantity of zero or less
// removes the item. Unknown product IDs are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) RemoveItem(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the line items.
func (c *Cart) Items() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line item for productID.
func (c *Cart) Item(productID string) (domain.CartLineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return domain.CartLineItem{}, false
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalItems is the sum of all quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalValue is the sum of price times quantity over all line items.
func (c *Cart) TotalValue() float64 {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.InexactFloat64()
}

// Snapshot converts the cart into the payload sent on checkout.
func (c *Cart) Snapshot() []domain.SubmittedItem {
	out := make([]domain.SubmittedItem, 0, len(c.items))
	for _, item := range c.items {
		id, _ := json.Marshal(item.ID)
		out = append(out, domain.SubmittedItem{
			ID:       id,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return out
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}
