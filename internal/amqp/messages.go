package amqp

import (
	"encoding/json"
	"time"
)

type EventKind string

const (
	// KindTransactionSync asks the worker to export one transaction to the
	// spreadsheet. The worker fetches the full row from storage by ID.
	KindTransactionSync EventKind = "transaction_sync"

	// KindTransactionDelete tells the worker a transaction was removed.
	KindTransactionDelete EventKind = "transaction_delete"

	// KindBudgetAlert reports a category that went over its budget.
	KindBudgetAlert EventKind = "budget_alert"
)

// Event is the single message envelope on the finflow exchange. Fields
// beyond Kind and Timestamp are populated per kind.
type Event struct {
	Kind          EventKind `json:"kind"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Category      string    `json:"category,omitempty"`
	Spent         float64   `json:"spent,omitempty"`
	Budget        float64   `json:"budget,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionSyncEvent(id string) Event {
	return Event{Kind: KindTransactionSync, TransactionID: id, Timestamp: time.Now()}
}

func NewTransactionDeleteEvent(id string) Event {
	return Event{Kind: KindTransactionDelete, TransactionID: id, Timestamp: time.Now()}
}

func NewBudgetAlertEvent(category string, spent, budget float64) Event {
	return Event{Kind: KindBudgetAlert, Category: category, Spent: spent, Budget: budget, Timestamp: time.Now()}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON creates an event from JSON bytes
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
