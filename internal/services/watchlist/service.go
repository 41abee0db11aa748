package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
)

// ErrInvalidSymbol rejects blank symbols at the service boundary.
var ErrInvalidSymbol = errors.New("invalid symbol")

// Service manages the per-identity symbol watchlist as a store set.
type Service struct {
	store  interfaces.KeyedStore
	logger *common.Logger
}

// NewService creates a watchlist service.
func NewService(store interfaces.KeyedStore, logger *common.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func watchlistKey(identity string) string {
	return "watchlist:" + identity
}

// List returns the identity's watched symbols, sorted.
func (s *Service) List(ctx context.Context, identity string) ([]string, error) {
	symbols, err := s.store.SMembers(ctx, watchlistKey(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist for %s: %w", identity, err)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Add puts a symbol on the watchlist. Adding a present symbol is a no-op.
func (s *Service) Add(ctx context.Context, identity, symbol string) error {
	symbol = common.NormalizeSymbol(symbol)
	if symbol == "" {
		return ErrInvalidSymbol
	}
	if err := s.store.SAdd(ctx, watchlistKey(identity), symbol); err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", symbol, err)
	}
	return nil
}

// Remove takes a symbol off the watchlist. Removing an absent symbol is a
// no-op.
func (s *Service) Remove(ctx context.Context, identity, symbol string) error {
	symbol = common.NormalizeSymbol(symbol)
	if symbol == "" {
		return ErrInvalidSymbol
	}
	if err := s.store.SRem(ctx, watchlistKey(identity), symbol); err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", symbol, err)
	}
	return nil
}

// Ensure Service implements WatchlistService
var _ interfaces.WatchlistService = (*Service)(nil)
