package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on transaction changes.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// TransactionEvent is the lightweight change message. Only the ID and the
// event kind travel; the worker fetches the full row from the store so a
// stale message never overwrites a newer edit.
type TransactionEvent struct {
	TransactionID string    `json:"transaction_id"`
	Event         string    `json:"event"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent builds a change message stamped now.
func NewTransactionEvent(id, event string) *TransactionEvent {
	return &TransactionEvent{
		TransactionID: id,
		Event:         event,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates a message from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
