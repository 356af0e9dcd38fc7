package sqs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Product notification actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ErrInvalidMessage is returned for product messages that no handler can act on.
var ErrInvalidMessage = errors.New("invalid product message")

// ProductMessage represents a notification about a catalog change.
type ProductMessage struct {
	Action    string  `json:"action"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	InStock   bool    `json:"in_stock"`
}

// Validate checks that the message carries a known action and a product id.
func (m ProductMessage) Validate() error {
	switch m.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidMessage, m.Action)
	}
	if m.ProductID == "" {
		return fmt.Errorf("%w: product_id is required", ErrInvalidMessage)
	}
	return nil
}

// DecodeProductMessage parses a JSON message body and validates it.
func DecodeProductMessage(body []byte) (ProductMessage, error) {
	var msg ProductMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return ProductMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return ProductMessage{}, err
	}
	return msg, nil
}
