package manifold

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// DefaultBaseURL is the public Manifold Markets API root.
const DefaultBaseURL = "https://api.manifold.markets/v0"

// Client is the REST client for the Manifold Markets API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Manifold REST client.
//
// baseURL is the API root, e.g. "https://api.manifold.markets/v0".
// apiKey authenticates every request; betting additionally requires the key
// to carry trade permissions.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Me returns the authenticated user's account details.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("manifold: get me: %w", err)
	}

	var u APIUser
	if err := json.Unmarshal(body, &u); err != nil {
		return domain.User{}, fmt.Errorf("manifold: decode user: %w", err)
	}

	return u.ToDomainUser(), nil
}

// SearchMarkets searches markets by free-text term. Results arrive in the
// API's relevance order, which is preserved downstream.
func (c *Client) SearchMarkets(ctx context.Context, term string, limit int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, http.MethodGet, "/search-markets?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("manifold: search markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("manifold: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToDomainMarket())
	}

	return markets, nil
}

// GetMarketBySlug returns the full details of a single market.
func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (domain.Market, error) {
	path := fmt.Sprintf("/slug/%s", url.PathEscape(slug))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.Market{}, fmt.Errorf("manifold: get market %s: %w", slug, err)
	}

	var m APIMarket
	if err := json.Unmarshal(body, &m); err != nil {
		return domain.Market{}, fmt.Errorf("manifold: decode market: %w", err)
	}

	return m.ToDomainMarket(), nil
}

// PlaceBet wagers amount mana on the given outcome of a market and returns
// the platform's fill. Amounts are sent as-is; the API rounds to whole mana.
func (c *Client) PlaceBet(ctx context.Context, marketID string, amount float64, outcome domain.BetSide) (domain.BetResult, error) {
	payload := struct {
		Amount     float64 `json:"amount"`
		ContractID string  `json:"contractId"`
		Outcome    string  `json:"outcome"`
	}{
		Amount:     amount,
		ContractID: marketID,
		Outcome:    string(outcome),
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/bet", payload)
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("manifold: place bet on %s: %w", marketID, err)
	}

	var resp APIBetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.BetResult{}, fmt.Errorf("manifold: decode bet response: %w", err)
	}

	return domain.BetResult{
		BetID:      resp.BetID,
		ContractID: resp.ContractID,
		Outcome:    domain.BetSide(resp.Outcome),
		Amount:     resp.Amount,
		Shares:     resp.Shares,
		ProbBefore: resp.ProbBefore,
		ProbAfter:  resp.ProbAfter,
		CreatedAt:  time.UnixMilli(resp.CreatedAt),
	}, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, sends, and reads an authenticated HTTP request against
// the Manifold API.
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Key "+c.apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func (c *Client) checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr APIError
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Message
	if msg == "" {
		msg = string(body)
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case http.StatusForbidden:
		// A 403 on bet placement almost always means the key lacks the
		// trade permission, so surface that hint with the error.
		return fmt.Errorf("%w: %s (check that the api key has trade permissions)", domain.ErrTradeForbidden, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
	default:
		return fmt.Errorf("manifold: http %d: %s", statusCode, msg)
	}
}
