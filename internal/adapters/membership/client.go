package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
)

// Client talks to the membership subsystem's HTTP API. The engine only
// reads tier/points and reports deltas; membership owns the records.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new membership client
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		panic("MEMBERSHIP_BASE_URL is required but not set")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type memberResponse struct {
	CustomerID      string `json:"customer_id"`
	Tier            string `json:"tier"`
	AvailablePoints int    `json:"available_points"`
}

type pointsDeltaRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type spendRequest struct {
	Amount float64 `json:"amount"`
}

// GetMemberTierAndPoints fetches the customer's current tier and balance
func (c *Client) GetMemberTierAndPoints(ctx context.Context, customerID string) (*core.MemberInfo, error) {
	url := fmt.Sprintf("%s/members/%s", c.baseURL, customerID)

	var member memberResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &member); err != nil {
		return nil, err
	}

	return &core.MemberInfo{
		Tier:            core.MemberTier(member.Tier),
		AvailablePoints: member.AvailablePoints,
	}, nil
}

// ApplyPointsDelta reports a points change (negative for redemption)
func (c *Client) ApplyPointsDelta(ctx context.Context, customerID string, delta int, reason string) error {
	url := fmt.Sprintf("%s/members/%s/points", c.baseURL, customerID)
	return c.do(ctx, http.MethodPost, url, pointsDeltaRequest{Delta: delta, Reason: reason}, nil)
}

// AddSpend reports completed-order spend toward tier progression
func (c *Client) AddSpend(ctx context.Context, customerID string, amount float64) error {
	url := fmt.Sprintf("%s/members/%s/spend", c.baseURL, customerID)
	return c.do(ctx, http.MethodPost, url, spendRequest{Amount: amount}, nil)
}

// ReevaluateTier asks membership to recompute the customer's tier
func (c *Client) ReevaluateTier(ctx context.Context, customerID string) error {
	url := fmt.Sprintf("%s/members/%s/tier/reevaluate", c.baseURL, customerID)
	return c.do(ctx, http.MethodPost, url, nil, nil)
}

func (c *Client) do(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("membership record: %w", core.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("membership API error: status %d, url: %s, body: %s",
			resp.StatusCode, url, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
