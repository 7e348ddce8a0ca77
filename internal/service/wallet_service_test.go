package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestWalletBalance(t *testing.T) {
	f := testFacade(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/user/profile" {
			t.Errorf("path = %s, want /api/v1/user/profile", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"coinBalance": 1250}}`))
	})
	svc := NewWalletService(f, nil)

	balance, err := svc.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance != 1250 {
		t.Errorf("Balance() = %d, want 1250", balance)
	}
}

func TestWalletPackages(t *testing.T) {
	svc := NewWalletService(testFacade(t, func(w http.ResponseWriter, r *http.Request) {}), nil)

	pkgs := svc.Packages()
	if len(pkgs) != 7 {
		t.Fatalf("Packages() = %d entries, want 7", len(pkgs))
	}
	if pkgs[0].BaseCoins != 100 || pkgs[0].PriceUSD != 1.00 {
		t.Errorf("pkgs[0] = %+v", pkgs[0])
	}
	if !pkgs[3].Popular || pkgs[3].Total() != 1050 {
		t.Errorf("pkgs[3] = %+v, want popular 1000+50", pkgs[3])
	}

	// Mutating the returned slice must not change the table.
	pkgs[0].BaseCoins = 1
	if svc.Packages()[0].BaseCoins != 100 {
		t.Error("Packages() exposes the internal table")
	}
}

func TestWalletPurchase(t *testing.T) {
	var gotCoins int
	f := testFacade(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/payments/buy-coins" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Coins int `json:"coins"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotCoins = body.Coins
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"link": "https://pay.example.test/redirect/abc"}`))
	})
	svc := NewWalletService(f, nil)

	link, err := svc.Purchase(context.Background(), 1000)
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if link != "https://pay.example.test/redirect/abc" {
		t.Errorf("link = %q", link)
	}
	if gotCoins != 1000 {
		t.Errorf("posted coins = %d, want 1000", gotCoins)
	}
}

func TestWalletPurchaseUnknownPackage(t *testing.T) {
	f := testFacade(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server for an unknown package")
	})
	svc := NewWalletService(f, nil)

	_, err := svc.Purchase(context.Background(), 123)
	if !errors.Is(err, ErrUnknownPackage) {
		t.Errorf("Purchase() error = %v, want ErrUnknownPackage", err)
	}
}

func TestWalletPurchaseNoLink(t *testing.T) {
	f := testFacade(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	svc := NewWalletService(f, nil)

	_, err := svc.Purchase(context.Background(), 500)
	if !errors.Is(err, ErrNoPaymentLink) {
		t.Errorf("Purchase() error = %v, want ErrNoPaymentLink", err)
	}
}
