package events

import (
	"encoding/json"
	"time"

	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

// Event types emitted after a ledger write commits
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// LedgerEvent describes one committed transaction change
type LedgerEvent struct {
	Type            string          `json:"type"`
	UserID          string          `json:"user_id"`
	TransactionID   string          `json:"transaction_id"`
	WalletID        string          `json:"wallet_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Date            models.Date     `json:"date"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// NewLedgerEvent builds an event for txn
func NewLedgerEvent(eventType string, txn models.Transaction, at time.Time) LedgerEvent {
	return LedgerEvent{
		Type:            eventType,
		UserID:          txn.UserID,
		TransactionID:   txn.ID,
		WalletID:        txn.WalletID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		Date:            txn.Date,
		OccurredAt:      at,
	}
}

// ToJSON converts the event to JSON bytes
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by ToJSON
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
