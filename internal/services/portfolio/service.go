package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/fetch"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

// Validation errors surfaced as 4xx at the endpoint boundary.
var (
	ErrInvalidHolding   = errors.New("invalid holding")
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	ErrHoldingNotFound  = errors.New("holding not found")
)

// Service manages per-identity holdings and the derived history series.
// Holdings are primary data in the store; the history series is a cache
// payload invalidated by the holdings hash.
type Service struct {
	store   interfaces.KeyedStore
	cache   *cache.Envelope
	finnhub interfaces.FinnhubClient
	orch    *fetch.Orchestrator
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a portfolio service.
func NewService(store interfaces.KeyedStore, envelope *cache.Envelope, finnhub interfaces.FinnhubClient, orch *fetch.Orchestrator, logger *common.Logger) *Service {
	return &Service{
		store:   store,
		cache:   envelope,
		finnhub: finnhub,
		orch:    orch,
		logger:  logger,
		now:     time.Now,
	}
}

func holdingsKey(identity string) string {
	return "portfolio:" + identity
}

func historyKey(identity string) string {
	return "portfolio_history:" + identity
}

// ListHoldings returns the holdings for an identity, oldest purchase first.
func (s *Service) ListHoldings(ctx context.Context, identity string) ([]models.Holding, error) {
	fields, err := s.store.HGetAll(ctx, holdingsKey(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings for %s: %w", identity, err)
	}

	holdings := make([]models.Holding, 0, len(fields))
	for id, raw := range fields {
		var h models.Holding
		if err := json.Unmarshal(raw, &h); err != nil {
			s.logger.Warn().Err(err).Str("identity", identity).Str("holding_id", id).Msg("Skipping undecodable holding record")
			continue
		}
		holdings = append(holdings, h)
	}

	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].PurchaseDate != holdings[j].PurchaseDate {
			return holdings[i].PurchaseDate < holdings[j].PurchaseDate
		}
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings, nil
}

// AddHolding validates and persists a new holding, then invalidates the
// cached history for the identity.
func (s *Service) AddHolding(ctx context.Context, identity string, h models.Holding) (*models.Holding, error) {
	h.Symbol = common.NormalizeSymbol(h.Symbol)
	if err := validateHolding(h); err != nil {
		return nil, err
	}

	h.ID = uuid.New().String()
	h.TotalCost = round2(h.Shares * h.PurchasePrice)

	raw, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal holding: %w", err)
	}
	if err := s.store.HSet(ctx, holdingsKey(identity), h.ID, raw); err != nil {
		return nil, fmt.Errorf("failed to store holding for %s: %w", identity, err)
	}

	// Holdings changed, the derived history is no longer valid
	s.cache.Delete(ctx, historyKey(identity))

	s.logger.Info().Str("identity", identity).Str("symbol", h.Symbol).Float64("shares", h.Shares).Msg("Holding added")
	return &h, nil
}

// DeleteHolding removes a holding and invalidates the cached history.
func (s *Service) DeleteHolding(ctx context.Context, identity, holdingID string) error {
	if _, err := s.store.HGet(ctx, holdingsKey(identity), holdingID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrHoldingNotFound
		}
		return fmt.Errorf("failed to load holding %s: %w", holdingID, err)
	}

	if err := s.store.HDel(ctx, holdingsKey(identity), holdingID); err != nil {
		return fmt.Errorf("failed to delete holding %s: %w", holdingID, err)
	}

	s.cache.Delete(ctx, historyKey(identity))

	s.logger.Info().Str("identity", identity).Str("holding_id", holdingID).Msg("Holding deleted")
	return nil
}

func validateHolding(h models.Holding) error {
	if h.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidHolding)
	}
	if h.Shares <= 0 {
		return fmt.Errorf("%w: shares must be positive", ErrInvalidHolding)
	}
	if h.PurchasePrice <= 0 {
		return fmt.Errorf("%w: purchase price must be positive", ErrInvalidHolding)
	}
	if _, err := time.Parse("2006-01-02", h.PurchaseDate); err != nil {
		return fmt.Errorf("%w: purchase date must be YYYY-MM-DD", ErrInvalidHolding)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
