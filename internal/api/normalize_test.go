package api

import (
	"testing"

	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIDAbsentSpellings(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "NULL", "undefined", "none", "nil"} {
		raw := raw
		id, err := NormalizeID("wallet_id", &raw)
		assert.NoError(t, err, raw)
		assert.Nil(t, id, raw)
	}

	id, err := NormalizeID("wallet_id", nil)
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestNormalizeIDValidatesUUID(t *testing.T) {
	raw := " 3F2504E0-4F89-11D3-9A0C-0305E82C3301 "
	id, err := NormalizeID("wallet_id", &raw)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", *id)

	bad := "wallet-1"
	_, err = NormalizeID("wallet_id", &bad)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "wallet_id")
}

func TestNormalizeText(t *testing.T) {
	undefined := "undefined"
	assert.Nil(t, NormalizeText(&undefined))
	name := "  Coffee "
	assert.Equal(t, "Coffee", *NormalizeText(&name))
}

func TestQueryParsers(t *testing.T) {
	n, err := queryInt("limit", "25")
	require.NoError(t, err)
	assert.Equal(t, 25, *n)

	n, err = queryInt("limit", "")
	require.NoError(t, err)
	assert.Nil(t, n)

	_, err = queryInt("limit", "ten")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	d, err := queryDate("start_date", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = queryDate("start_date", "29/02/2024")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = pathID("not-a-uuid", "Wallet")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
