package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/monitoring"
)

var (
	// ErrContentUnavailable means every configured gateway failed for the
	// hash. Retryable infrastructure failure, not a business rejection.
	ErrContentUnavailable = errors.New("ipfs: content unavailable on all gateways")

	// ErrSchemaMismatch means the blob parsed but its type discriminator
	// did not match the expected document kind.
	ErrSchemaMismatch = errors.New("ipfs: unexpected document type")

	// ErrPinUnavailable means the pinning endpoint rejected or failed the
	// write.
	ErrPinUnavailable = errors.New("ipfs: pinning service unavailable")
)

// Client retrieves immutable JSON blobs by content hash through an ordered
// list of public gateways, and pins new documents through a pinning
// endpoint.
type Client struct {
	gateways []string
	timeout  time.Duration
	pinURL   string
	pinToken string
	httpc    *http.Client
}

func NewClient(cfg config.IPFSConfig) *Client {
	timeout := time.Duration(cfg.GatewayTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	gateways := cfg.Gateways
	if len(gateways) == 0 {
		gateways = []string{"https://ipfs.io/ipfs/"}
	}
	return &Client{
		gateways: gateways,
		timeout:  timeout,
		pinURL:   cfg.PinURL,
		pinToken: cfg.PinToken,
		httpc:    &http.Client{},
	}
}

// Fetch tries each gateway in order with a bounded per-gateway timeout and
// returns the first successful parse.
func (c *Client) Fetch(ctx context.Context, cid string) (json.RawMessage, error) {
	if cid == "" {
		return nil, fmt.Errorf("%w: empty hash", ErrContentUnavailable)
	}

	for _, gateway := range c.gateways {
		data, err := c.fetchOne(ctx, gateway, cid)
		if err != nil {
			monitoring.GatewayFailures.WithLabelValues(gateway).Inc()
			logger.Warn("IPFS gateway %s failed for %s: %v", gateway, cid, err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrContentUnavailable, cid)
}

func (c *Client) fetchOne(ctx context.Context, gateway, cid string) (json.RawMessage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, gateway+cid, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("response is not valid JSON")
	}
	return body, nil
}

// GatewayURL builds a direct access URL on the primary gateway.
func (c *Client) GatewayURL(cid string) string {
	return c.gateways[0] + cid
}

// Pin persists a JSON document to the pinning endpoint and returns its
// content hash.
func (c *Client) Pin(ctx context.Context, doc interface{}) (string, error) {
	if c.pinURL == "" {
		return "", fmt.Errorf("%w: no pinning endpoint configured", ErrPinUnavailable)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pinURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.pinToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.pinToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPinUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: HTTP %d", ErrPinUnavailable, resp.StatusCode)
	}

	var result struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.IpfsHash == "" {
		return "", fmt.Errorf("%w: malformed pin response", ErrPinUnavailable)
	}
	return result.IpfsHash, nil
}
