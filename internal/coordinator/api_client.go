package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumina/lts/internal/logic"
	"github.com/lumina/lts/internal/model"
)

// APIClient talks to the marketplace REST backend. Server verdicts always
// win: any local state a caller holds is replaced wholesale by the
// snapshots returned here.
type APIClient struct {
	baseURL string
	httpc   *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the server's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *APIClient) PrepareAuction(ctx context.Context, req logic.PrepareAuctionRequest) (*logic.PrepareAuctionResult, error) {
	var result logic.PrepareAuctionResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/marketplace/auctions/prepare", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) RegisterAuction(ctx context.Context, req logic.RegisterAuctionRequest) (*model.Auction, error) {
	var auction model.Auction
	if err := c.do(ctx, http.MethodPost, "/api/v1/marketplace/register", req, &auction); err != nil {
		return nil, err
	}
	return &auction, nil
}

func (c *APIClient) GetAuction(ctx context.Context, auctionID int64) (*model.Auction, error) {
	var auction model.Auction
	path := "/api/v1/marketplace/auctions/" + strconv.FormatInt(auctionID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &auction); err != nil {
		return nil, err
	}
	return &auction, nil
}

func (c *APIClient) ListAuctions(ctx context.Context, filter logic.ListFilter) ([]model.Auction, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.EventID > 0 {
		q.Set("eventId", strconv.FormatInt(filter.EventID, 10))
	}
	if filter.SellerAddress != "" {
		q.Set("seller", filter.SellerAddress)
	}
	if filter.SortBy != "" {
		q.Set("sortBy", filter.SortBy)
	}
	path := "/api/v1/marketplace/auctions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var auctions []model.Auction
	if err := c.do(ctx, http.MethodGet, path, nil, &auctions); err != nil {
		return nil, err
	}
	return auctions, nil
}

// PlaceBid submits a bid and returns the authoritative auction snapshot on
// acceptance. A rejected bid comes back as a typed error; stale bids carry
// the server's fresh price.
func (c *APIClient) PlaceBid(ctx context.Context, auctionID int64, req logic.PlaceBidRequest) (*model.Auction, error) {
	var auction model.Auction
	path := fmt.Sprintf("/api/v1/marketplace/auctions/%d/bid", auctionID)
	if err := c.do(ctx, http.MethodPost, path, req, &auction); err != nil {
		return nil, err
	}
	return &auction, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("malformed marketplace response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		return mapServerError(resp.StatusCode, env)
	}
	if dest != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, dest)
	}
	return nil
}

// mapServerError turns the server's status code and payload back into the
// typed conditions callers branch on.
func mapServerError(status int, env envelope) error {
	switch status {
	case http.StatusConflict:
		var detail struct {
			CurrentPrice *decimal.Decimal `json:"currentPrice"`
		}
		if len(env.Data) > 0 && json.Unmarshal(env.Data, &detail) == nil && detail.CurrentPrice != nil {
			return &StaleBidError{CurrentPrice: *detail.CurrentPrice}
		}
		return fmt.Errorf("%w: %s", ErrDuplicateListing, env.Message)
	case http.StatusGone:
		return ErrAuctionEnded
	case http.StatusNotFound:
		return ErrAuctionNotFound
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrValidation, env.Message)
	default:
		return fmt.Errorf("marketplace error (status %d): %s", status, env.Message)
	}
}
