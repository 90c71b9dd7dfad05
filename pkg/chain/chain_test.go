package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransfer(t *testing.T) {
	t.Run("returns confirmed signature", func(t *testing.T) {
		var gotBody transferRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/transfers" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("auth header = %q", got)
			}
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(transferResponse{Signature: "sig-abc123", Status: "confirmed"})
		}))
		defer srv.Close()

		c := New(srv.URL, "secret", "custody-1", 5*time.Second)
		sig, err := c.Transfer(context.Background(), "wallet-xyz", 9000)
		if err != nil {
			t.Fatalf("Transfer: %v", err)
		}
		if sig != "sig-abc123" {
			t.Errorf("signature = %q", sig)
		}
		if gotBody.From != "custody-1" || gotBody.To != "wallet-xyz" || gotBody.AmountCents != 9000 {
			t.Errorf("request body = %+v", gotBody)
		}
	})

	t.Run("4xx rejection is definite", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid destination", http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		c := New(srv.URL, "secret", "custody-1", 5*time.Second)
		_, err := c.Transfer(context.Background(), "wallet-xyz", 9000)
		if err == nil {
			t.Fatal("expected error")
		}
		if IsAmbiguous(err) {
			t.Errorf("4xx must not be ambiguous: %v", err)
		}
	})

	t.Run("5xx is ambiguous", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(srv.URL, "secret", "custody-1", 5*time.Second)
		_, err := c.Transfer(context.Background(), "wallet-xyz", 9000)
		if !IsAmbiguous(err) {
			t.Errorf("5xx must be ambiguous, got: %v", err)
		}
	})

	t.Run("missing signature on 2xx is ambiguous", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(transferResponse{Status: "pending"})
		}))
		defer srv.Close()

		c := New(srv.URL, "secret", "custody-1", 5*time.Second)
		_, err := c.Transfer(context.Background(), "wallet-xyz", 9000)
		if !IsAmbiguous(err) {
			t.Errorf("2xx without signature must be ambiguous, got: %v", err)
		}
	})

	t.Run("transport failure is ambiguous", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := New(srv.URL, "secret", "custody-1", time.Second)
		_, err := c.Transfer(context.Background(), "wallet-xyz", 9000)
		if !IsAmbiguous(err) {
			t.Errorf("transport failure must be ambiguous, got: %v", err)
		}
	})
}
