package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := Encode(42, 1337)
	assert.Equal(t, "lumina://42/1337", payload)

	eventID, ticketID, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(42), eventID)
	assert.Equal(t, int64(1337), ticketID)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := []string{
		"",
		"lumina://",
		"lumina://42",
		"lumina://42/1337/extra",
		"lumina://abc/1337",
		"lumina://42/xyz",
		"lumina://0/5",
		"lumina://42/-1",
		"https://example.com/42/1337",
		"42/1337",
	}
	for _, payload := range cases {
		_, _, err := Decode(payload)
		assert.ErrorIs(t, err, ErrBadPayload, "payload %q", payload)
	}
}
