// Package paygate is an HTTP client for the external payment gateway. It
// implements payment.Gateway; the rest of the system only ever sees that
// interface.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type chargeRequest struct {
	PatronID string  `json:"patron_id"`
	Amount   float64 `json:"amount"`
	Memo     string  `json:"memo,omitempty"`
}

type refundRequest struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// gatewayResponse matches the provider's charge/refund result shape.
type gatewayResponse struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference"`
}

func (c *Client) ProcessPayment(ctx context.Context, patronID string, amount float64, memo string) (bool, string, error) {
	req := chargeRequest{PatronID: patronID, Amount: amount, Memo: memo}
	res, err := c.post(ctx, "/v1/charges", req)
	if err != nil {
		return false, "", err
	}
	return res.Approved, res.Reference, nil
}

func (c *Client) RefundPayment(ctx context.Context, transactionID string, amount float64) (bool, string, error) {
	req := refundRequest{TransactionID: transactionID, Amount: amount}
	res, err := c.post(ctx, "/v1/refunds", req)
	if err != nil {
		return false, "", err
	}
	return res.Approved, res.Reference, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*gatewayResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var res gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
