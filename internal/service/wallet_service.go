package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quillpress/quillctl/internal/adapter/outbound/rest"
)

// CoinPackage is one purchasable coin bundle.
type CoinPackage struct {
	BaseCoins int     `json:"baseCoins"`
	Bonus     int     `json:"bonus"`
	PriceUSD  float64 `json:"price"`
	Popular   bool    `json:"popular"`
}

// Total returns base plus bonus coins.
func (p CoinPackage) Total() int {
	return p.BaseCoins + p.Bonus
}

// coinPackages is the platform's fixed price table.
var coinPackages = []CoinPackage{
	{BaseCoins: 100, Bonus: 0, PriceUSD: 1.00},
	{BaseCoins: 300, Bonus: 0, PriceUSD: 2.99},
	{BaseCoins: 500, Bonus: 0, PriceUSD: 4.99},
	{BaseCoins: 1000, Bonus: 50, PriceUSD: 9.99, Popular: true},
	{BaseCoins: 2000, Bonus: 200, PriceUSD: 19.99},
	{BaseCoins: 5000, Bonus: 1750, PriceUSD: 49.99},
	{BaseCoins: 10000, Bonus: 4500, PriceUSD: 99.99},
}

// WalletService errors.
var (
	ErrUnknownPackage = errors.New("no such coin package")
	ErrNoPaymentLink  = errors.New("purchase response carried no payment link")
)

// WalletService reads the account's coin balance and initiates purchases.
type WalletService struct {
	api    *rest.Facade
	logger *slog.Logger
}

// NewWalletService creates a WalletService on top of the shared facade.
func NewWalletService(api *rest.Facade, logger *slog.Logger) *WalletService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletService{api: api, logger: logger}
}

// Balance returns the account's current coin balance.
func (s *WalletService) Balance(ctx context.Context) (int, error) {
	var envelope struct {
		Data struct {
			CoinBalance int `json:"coinBalance"`
		} `json:"data"`
	}
	if _, err := s.api.DoJSON(ctx, http.MethodGet, "/user/profile", nil, nil, &envelope); err != nil {
		return 0, fmt.Errorf("fetch profile: %w", err)
	}
	return envelope.Data.CoinBalance, nil
}

// Packages lists the purchasable coin bundles.
func (s *WalletService) Packages() []CoinPackage {
	out := make([]CoinPackage, len(coinPackages))
	copy(out, coinPackages)
	return out
}

// Purchase initiates a coin purchase and returns the payment redirect URL.
// The caller is responsible for opening it; the payment flow itself happens
// on the provider's pages.
func (s *WalletService) Purchase(ctx context.Context, baseCoins int) (string, error) {
	if !validPackage(baseCoins) {
		return "", fmt.Errorf("%w: %d coins", ErrUnknownPackage, baseCoins)
	}

	req := struct {
		Coins int `json:"coins"`
	}{Coins: baseCoins}
	var resp struct {
		Link string `json:"link"`
	}
	if _, err := s.api.DoJSON(ctx, http.MethodPost, "/payments/buy-coins", nil, req, &resp); err != nil {
		return "", fmt.Errorf("initiate purchase: %w", err)
	}
	if resp.Link == "" {
		return "", ErrNoPaymentLink
	}

	s.logger.Info("purchase initiated", "coins", baseCoins)
	return resp.Link, nil
}

func validPackage(baseCoins int) bool {
	for _, p := range coinPackages {
		if p.BaseCoins == baseCoins {
			return true
		}
	}
	return false
}
