package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// OrderPlacedMessage announces a newly persisted order. Consumers load the
// order itself from the store.
type OrderPlacedMessage struct {
	OrderID   string    `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderPlacedMessage(orderID string) *OrderPlacedMessage {
	return &OrderPlacedMessage{
		OrderID:   orderID,
		Timestamp: time.Now(),
	}
}

func (m *OrderPlacedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func OrderPlacedMessageFromJSON(data []byte) (*OrderPlacedMessage, error) {
	var msg OrderPlacedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.OrderID == "" {
		return nil, errors.New("missing orderId")
	}
	return &msg, nil
}
