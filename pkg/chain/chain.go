// Package chain is the client for the custody payment-network API: outbound
// transfers from the custody account to a member's wallet. Transfer signatures
// are globally unique and serve as idempotency keys for ledger records.
package chain

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

// ErrAmbiguous marks a transfer whose outcome is unknown: the request went
// out but no confirmation came back. The transfer is not safely retryable.
var ErrAmbiguous = errors.New("chain transfer: outcome unknown")

func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguous)
}

type Client struct {
	BaseURL        string
	CustodyAccount string
	apiKey         string
	client         *http.Client
}

func New(baseURL, apiKey, custodyAccount string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:        baseURL,
		CustodyAccount: custodyAccount,
		apiKey:         apiKey,
		client:         &http.Client{Timeout: timeout},
	}
}

type transferRequest struct {
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
}

type transferResponse struct {
	Signature string `json:"signature"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Transfer sends amountCents from custody to the given wallet address and
// returns the confirmed transaction signature. Blocking, bounded by the
// client timeout; once issued it runs to completion or timeout.
func (c *Client) Transfer(ctx context.Context, toAddress string, amountCents int64) (string, error) {
	body, _ := json.Marshal(transferRequest{
		From:        c.CustodyAccount,
		To:          toAddress,
		AmountCents: amountCents,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chain transfer: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	log.Printf("[Chain] POST /v1/transfers to=%s amount_cents=%d", toAddress, amountCents)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chain transfer: %v: %w", err, ErrAmbiguous)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[Chain] transfer response status=%d body=%s", resp.StatusCode, string(respBody))
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("chain transfer: %d %s: %w", resp.StatusCode, string(respBody), ErrAmbiguous)
	default:
		return "", fmt.Errorf("chain transfer rejected: %d %s", resp.StatusCode, string(respBody))
	}
	var out transferResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("chain transfer: %v: %w", err, ErrAmbiguous)
	}
	if out.Signature == "" {
		return "", fmt.Errorf("chain transfer: empty signature in response: %w", ErrAmbiguous)
	}
	return out.Signature, nil
}
