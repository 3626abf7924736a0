package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransaction() models.Transaction {
	return models.Transaction{
		ID:       "txn-1",
		UserID:   "user-1",
		WalletID: "wallet-1",
		Type:     models.TypeExpense,
		Amount:   decimal.RequireFromString("25000.50"),
		Date:     models.NewDate(2024, 2, 14),
	}
}

func TestLedgerEventJSONRoundTrip(t *testing.T) {
	at := time.Date(2024, 2, 14, 8, 30, 0, 0, time.UTC)
	event := NewLedgerEvent(TransactionCreated, sampleTransaction(), at)

	body, err := event.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"transaction.created"`)
	assert.Contains(t, string(body), `"date":"2024-02-14"`)

	decoded, err := LedgerEventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, "txn-1", decoded.TransactionID)
	assert.True(t, decoded.Amount.Equal(event.Amount))
	assert.True(t, decoded.OccurredAt.Equal(at))

	_, err = LedgerEventFromJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestRoutingKey(t *testing.T) {
	event := NewLedgerEvent(TransactionDeleted, sampleTransaction(), time.Now())
	assert.Equal(t, "ledger.events.transaction.deleted", RoutingKey("ledger.events", event))
	assert.Equal(t, "transaction.deleted", RoutingKey("", event))
}

func TestMemoryPublisher(t *testing.T) {
	p := &MemoryPublisher{}
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, NewLedgerEvent(TransactionCreated, sampleTransaction(), time.Now())))
	require.NoError(t, p.Publish(ctx, NewLedgerEvent(TransactionUpdated, sampleTransaction(), time.Now())))

	got := p.Events()
	require.Len(t, got, 2)
	assert.Equal(t, TransactionUpdated, got[1].Type)

	p.Err = errors.New("broker down")
	assert.Error(t, p.Publish(ctx, NewLedgerEvent(TransactionDeleted, sampleTransaction(), time.Now())))
	assert.Len(t, p.Events(), 2)

	var nop NopPublisher
	assert.NoError(t, nop.Publish(ctx, LedgerEvent{}))
}
