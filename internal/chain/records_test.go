package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventTuple(id int64) []interface{} {
	return []interface{}{
		big.NewInt(id),
		"Concert",
		"An evening of noise",
		"2026-09-01T20:00:00Z",
		"Main Hall",
		big.NewInt(50_000_000_000_000_000), // 0.05 ETH
		"ipfs://image",
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		big.NewInt(100),
		big.NewInt(40),
		"music",
		true,
		big.NewInt(500),
	}
}

func TestDecodeEventRecord(t *testing.T) {
	record, err := decodeEventRecord(eventTuple(7))
	require.NoError(t, err)

	assert.Equal(t, int64(7), record.ID)
	assert.Equal(t, "Concert", record.Title)
	assert.Equal(t, "Main Hall", record.Location)
	assert.Equal(t, int64(100), record.TotalTickets)
	assert.Equal(t, int64(40), record.SoldTickets)
	assert.Equal(t, int64(60), record.Remaining())
	assert.Equal(t, int64(500), record.RoyaltyBps)
	assert.True(t, record.IsActive)
	assert.Equal(t, "0.05", record.PriceETH().String())
}

func TestDecodeEventRecordZeroIDIsNotFound(t *testing.T) {
	_, err := decodeEventRecord(eventTuple(0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeEventRecordShortTuple(t *testing.T) {
	_, err := decodeEventRecord(eventTuple(7)[:12])
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecodeEventRecordWrongFieldType(t *testing.T) {
	tuple := eventTuple(7)
	tuple[5] = "not a big int"
	_, err := decodeEventRecord(tuple)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecodeTicketRecord(t *testing.T) {
	owner := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
	record, err := decodeTicketRecord([]interface{}{
		big.NewInt(21),
		big.NewInt(7),
		owner,
		big.NewInt(1_760_000_000),
		"lumina://7/21",
		false,
		big.NewInt(1),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(21), record.ID)
	assert.Equal(t, int64(7), record.EventID)
	assert.Equal(t, owner, record.Owner)
	assert.Equal(t, "lumina://7/21", record.QRCodeData)
	assert.False(t, record.IsUsed)
	assert.Equal(t, int64(1), record.TicketType)
	assert.Equal(t, int64(1_760_000_000), record.PurchaseTime.Unix())
}

func TestDecodeTicketRecordZeroIDIsNotFound(t *testing.T) {
	_, err := decodeTicketRecord([]interface{}{
		big.NewInt(0), big.NewInt(7),
		common.Address{}, big.NewInt(0), "", false, big.NewInt(0),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
