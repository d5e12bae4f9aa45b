// Package validation gates cart submissions before they reach the
// submission service.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/ajinkyamaster/storefront/internal/domain"
)

const (
	MsgInvalidJSON   = "Invalid JSON body"
	MsgItemsRequired = "Items array is required"
	MsgItemsNotArray = "Items must be an array"
	MsgCartEmpty     = "Cart cannot be empty"
	MsgItemFields    = "Each item must have id, name, price, and quantity"
	MsgItemRange     = "Price must be non-negative and quantity must be at least 1"
)

// Error is a client input error. Message is safe to return to the caller.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func reject(msg string) *Error {
	return &Error{Message: msg}
}

// IsValidationError reports whether err is a client input error.
func IsValidationError(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr)
}

type envelope struct {
	items    json.RawMessage
	present  bool
	elements []json.RawMessage
}

type item struct {
	fields map[string]json.RawMessage
	parsed domain.SubmittedItem
}

// Checks run in order; the first failure is the only one reported.
var envelopeChecks = []func(*envelope) *Error{
	func(e *envelope) *Error {
		if !e.present || !truthy(e.items) {
			return reject(MsgItemsRequired)
		}
		return nil
	},
	func(e *envelope) *Error {
		if err := json.Unmarshal(e.items, &e.elements); err != nil || e.elements == nil {
			return reject(MsgItemsNotArray)
		}
		return nil
	},
	func(e *envelope) *Error {
		if len(e.elements) == 0 {
			return reject(MsgCartEmpty)
		}
		return nil
	},
}

var itemChecks = []func(*item) *Error{
	checkItemFields,
	func(it *item) *Error {
		if it.parsed.Price < 0 || it.parsed.Quantity < 1 {
			return reject(MsgItemRange)
		}
		return nil
	},
}

// ValidateCart validates a raw cart submission body of the form
// {"items": [{"id", "name", "price", "quantity"}, ...]} and returns the parsed
// items. A returned error is always a *Error.
func ValidateCart(body []byte) ([]domain.SubmittedItem, error) {
	env := &envelope{}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		if !json.Valid(trimmed) {
			return nil, reject(MsgInvalidJSON)
		}
		var top map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &top); err == nil {
			env.items, env.present = top["items"]
		}
	}

	for _, check := range envelopeChecks {
		if err := check(env); err != nil {
			return nil, err
		}
	}

	items := make([]domain.SubmittedItem, 0, len(env.elements))
	for _, raw := range env.elements {
		it := &item{parsed: domain.SubmittedItem{Raw: raw}}
		for _, check := range itemChecks {
			if err := check(it); err != nil {
				return nil, err
			}
		}
		items = append(items, it.parsed)
	}
	return items, nil
}

// checkItemFields requires a truthy id, a non-empty name, a numeric price and
// a non-zero quantity that is a JSON integer. A fractional quantity such as
// 1.5 fails here with MsgItemFields, before the range checks run.
func checkItemFields(it *item) *Error {
	if err := json.Unmarshal(it.parsed.Raw, &it.fields); err != nil || it.fields == nil {
		return reject(MsgItemFields)
	}

	id, ok := it.fields["id"]
	if !ok || !truthy(id) {
		return reject(MsgItemFields)
	}
	it.parsed.ID = id

	if err := json.Unmarshal(it.fields["name"], &it.parsed.Name); err != nil || it.parsed.Name == "" {
		return reject(MsgItemFields)
	}

	price, ok := number(it.fields["price"])
	if !ok {
		return reject(MsgItemFields)
	}
	if it.parsed.Price, ok = asFloat(price); !ok {
		return reject(MsgItemFields)
	}

	quantity, ok := number(it.fields["quantity"])
	if !ok || !truthy(it.fields["quantity"]) {
		return reject(MsgItemFields)
	}
	q, err := quantity.Int64()
	if err != nil {
		return reject(MsgItemFields)
	}
	it.parsed.Quantity = int(q)
	return nil
}

func number(raw json.RawMessage) (json.Number, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return "", false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n, true
}

func asFloat(n json.Number) (float64, bool) {
	f, err := n.Float64()
	return f, err == nil
}

// truthy reports whether a JSON value counts as present: null, false, zero and
// the empty string do not.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case '"':
		return len(raw) > 2
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := json.Number(raw).Float64()
		return err != nil || f != 0
	}
	return true
}
