package coordinator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/lts/internal/logic"
)

func envelopeHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestGetAuctionDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/marketplace/auctions/101", r.URL.Path)
		envelopeHandler(http.StatusOK,
			`{"success":true,"message":"ok","data":{"id":101,"current_price":"0.5","status":"active"}}`)(w, r)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL)
	auction, err := client.GetAuction(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, int64(101), auction.ID)
	assert.True(t, auction.CurrentPrice.Equal(decimal.RequireFromString("0.5")))
}

func TestPlaceBidMapsStaleConflict(t *testing.T) {
	server := httptest.NewServer(envelopeHandler(http.StatusConflict,
		`{"success":false,"message":"bid is below the current price","data":{"currentPrice":"0.75"}}`))
	defer server.Close()

	client := NewAPIClient(server.URL)
	_, err := client.PlaceBid(context.Background(), 101, logic.PlaceBidRequest{
		BidAmount: decimal.RequireFromString("0.6"),
	})

	var stale *StaleBidError
	require.ErrorAs(t, err, &stale)
	assert.True(t, stale.CurrentPrice.Equal(decimal.RequireFromString("0.75")))
}

func TestPrepareMapsDuplicateListingConflict(t *testing.T) {
	server := httptest.NewServer(envelopeHandler(http.StatusConflict,
		`{"success":false,"message":"ticket already listed"}`))
	defer server.Close()

	client := NewAPIClient(server.URL)
	_, err := client.PrepareAuction(context.Background(), logic.PrepareAuctionRequest{})
	assert.ErrorIs(t, err, ErrDuplicateListing)
}

func TestPlaceBidMapsGoneToAuctionEnded(t *testing.T) {
	server := httptest.NewServer(envelopeHandler(http.StatusGone,
		`{"success":false,"message":"auction ended"}`))
	defer server.Close()

	client := NewAPIClient(server.URL)
	_, err := client.PlaceBid(context.Background(), 101, logic.PlaceBidRequest{})
	assert.ErrorIs(t, err, ErrAuctionEnded)
}

func TestGetAuctionMapsNotFound(t *testing.T) {
	server := httptest.NewServer(envelopeHandler(http.StatusNotFound,
		`{"success":false,"message":"auction not found"}`))
	defer server.Close()

	client := NewAPIClient(server.URL)
	_, err := client.GetAuction(context.Background(), 404)
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestListAuctionsBuildsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		envelopeHandler(http.StatusOK, `{"success":true,"message":"ok","data":[]}`)(w, r)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL)
	_, err := client.ListAuctions(context.Background(), logic.ListFilter{
		Status: "active", EventID: 7, SortBy: "ending_soon",
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "status=active")
	assert.Contains(t, gotQuery, "eventId=7")
	assert.Contains(t, gotQuery, "sortBy=ending_soon")
}

func TestMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL)
	_, err := client.GetAuction(context.Background(), 1)
	require.Error(t, err)

	var decodeErr *json.SyntaxError
	assert.ErrorAs(t, err, &decodeErr)
}
