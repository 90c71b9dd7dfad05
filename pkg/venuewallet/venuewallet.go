// Package venuewallet wraps the venue point-of-sale wallet service. The
// service is NOT idempotent on Fund: repeating a fund after an ambiguous
// failure may double-fund. Callers must check errors with IsAmbiguous and
// treat ambiguous outcomes as requiring manual reconciliation, never retry.
package venuewallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrAmbiguous marks a Fund outcome that may or may not have landed at the
// venue side (transport error, timeout, or a 5xx after the request went out).
var ErrAmbiguous = errors.New("venue wallet: outcome unknown")

func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguous)
}

type Client struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type fundRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type fundResponse struct {
	Ack         bool   `json:"ack"`
	Message     string `json:"message"`
	AmountCents int64  `json:"amount_cents"`
}

// Fund loads amountCents of credit onto the customer's wallet for the event.
func (c *Client) Fund(ctx context.Context, eventID, customerID string, amountCents int64) error {
	url := fmt.Sprintf("%s/api/events/%s/customers/%s/fund", c.BaseURL, eventID, customerID)
	body, _ := json.Marshal(fundRequest{AmountCents: amountCents})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("venue wallet fund: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	log.Printf("[VenueWallet] POST fund event=%s customer=%s amount_cents=%d", eventID, customerID, amountCents)
	resp, err := c.client.Do(req)
	if err != nil {
		// The request may have been delivered before the failure.
		return fmt.Errorf("venue wallet fund: %v: %w", err, ErrAmbiguous)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[VenueWallet] fund response status=%d body=%s", resp.StatusCode, string(respBody))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("venue wallet fund: %d %s: %w", resp.StatusCode, string(respBody), ErrAmbiguous)
	default:
		// The venue side rejected the request; the fund did not happen.
		return fmt.Errorf("venue wallet fund rejected: %d %s", resp.StatusCode, string(respBody))
	}
}

type balanceResponse struct {
	AmountCents int64 `json:"amount_cents"`
}

// Balance reads the wallet's current remaining amount. Reads are idempotent,
// so every failure here is safely retryable by the caller.
func (c *Client) Balance(ctx context.Context, eventID, customerID string) (int64, error) {
	url := fmt.Sprintf("%s/api/events/%s/customers/%s/balance", c.BaseURL, eventID, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("venue wallet balance: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("venue wallet balance: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("venue wallet balance: %d %s", resp.StatusCode, string(respBody))
	}
	var out balanceResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("venue wallet balance: %w", err)
	}
	return out.AmountCents, nil
}
