package venuewallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFund(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotPath string
		var gotBody fundRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(fundResponse{Ack: true, AmountCents: gotBody.AmountCents})
		}))
		defer srv.Close()

		c := New(srv.URL, "key", 5*time.Second)
		if err := c.Fund(context.Background(), "evt-1", "cust-1", 7000); err != nil {
			t.Fatalf("Fund: %v", err)
		}
		if gotPath != "/api/events/evt-1/customers/cust-1/fund" {
			t.Errorf("path = %s", gotPath)
		}
		if gotBody.AmountCents != 7000 {
			t.Errorf("amount = %d, want 7000", gotBody.AmountCents)
		}
	})

	t.Run("4xx rejection is a definite failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown customer", http.StatusBadRequest)
		}))
		defer srv.Close()

		c := New(srv.URL, "key", 5*time.Second)
		err := c.Fund(context.Background(), "evt-1", "cust-1", 7000)
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

		c := New(srv.URL, "key", 5*time.Second)
		err := c.Fund(context.Background(), "evt-1", "cust-1", 7000)
		if !IsAmbiguous(err) {
			t.Errorf("5xx must be ambiguous, got: %v", err)
		}
	})

	t.Run("transport failure is ambiguous", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		c := New(srv.URL, "key", time.Second)
		err := c.Fund(context.Background(), "evt-1", "cust-1", 7000)
		if !IsAmbiguous(err) {
			t.Errorf("transport failure must be ambiguous, got: %v", err)
		}
	})
}

func TestBalance(t *testing.T) {
	t.Run("reads remaining amount", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/events/evt-1/customers/cust-1/balance" {
				t.Errorf("path = %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(balanceResponse{AmountCents: 2000})
		}))
		defer srv.Close()

		c := New(srv.URL, "key", 5*time.Second)
		got, err := c.Balance(context.Background(), "evt-1", "cust-1")
		if err != nil {
			t.Fatalf("Balance: %v", err)
		}
		if got != 2000 {
			t.Errorf("balance = %d, want 2000", got)
		}
	})

	t.Run("failures are plain errors, never ambiguous", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(srv.URL, "key", 5*time.Second)
		_, err := c.Balance(context.Background(), "evt-1", "cust-1")
		if err == nil {
			t.Fatal("expected error")
		}
		if IsAmbiguous(err) {
			t.Errorf("balance reads are idempotent, error must not be ambiguous: %v", err)
		}
	})
}
