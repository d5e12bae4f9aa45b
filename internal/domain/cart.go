package domain

import (
	"encoding/json"
	"time"
)

// CartLineItem is a product held in a cart together with its quantity.
type CartLineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// SubmittedItem is one entry of a cart submission. Raw keeps the item exactly
// as the client sent it so that fields outside id/name/price/quantity are
// echoed back untouched.
type SubmittedItem struct {
	ID       json.RawMessage
	Name     string
	Price    float64
	Quantity int
	Raw      json.RawMessage
}

func (i SubmittedItem) MarshalJSON() ([]byte, error) {
	if len(i.Raw) > 0 {
		return i.Raw, nil
	}
	return json.Marshal(struct {
		ID       json.RawMessage `json:"id"`
		Name     string          `json:"name"`
		Price    float64         `json:"price"`
		Quantity int             `json:"quantity"`
	}{i.ID, i.Name, i.Price, i.Quantity})
}

func (i *SubmittedItem) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID       json.RawMessage `json:"id"`
		Name     string          `json:"name"`
		Price    float64         `json:"price"`
		Quantity int             `json:"quantity"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	i.ID = fields.ID
	i.Name = fields.Name
	i.Price = fields.Price
	i.Quantity = fields.Quantity
	i.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Receipt is the server-side view of an accepted cart submission.
type Receipt struct {
	Items       []SubmittedItem `json:"items"`
	TotalPrice  float64         `json:"totalPrice"`
	TotalItems  int             `json:"totalItems"`
	SubmittedAt time.Time       `json:"submittedAt"`
}
