package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/fetch"
	"github.com/bobmcallan/stockpulse/internal/models"
)

// timeframeDays maps each timeframe to its lookback window. All is handled
// separately: it starts at the earliest purchase date.
var timeframeDays = map[string]int{
	models.Timeframe1W: 7,
	models.Timeframe1M: 30,
	models.Timeframe3M: 90,
	models.Timeframe1Y: 365,
}

// GetHistory returns the snapshot series for an identity filtered to the
// requested timeframe.
//
// The full series (from the earliest purchase to today) is computed once,
// cached for an hour keyed by identity together with the holdings hash,
// and sliced per request. A cached series is reused only when its hash
// matches the current holdings and force refresh was not requested.
func (s *Service) GetHistory(ctx context.Context, identity, timeframe string, forceRefresh bool) (*models.PortfolioHistory, models.CacheMeta, error) {
	if !models.ValidTimeframe(timeframe) {
		return nil, models.CacheMeta{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, timeframe)
	}

	holdings, err := s.ListHoldings(ctx, identity)
	if err != nil {
		return nil, models.CacheMeta{}, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	hash := HoldingsHash(holdings)

	if len(holdings) == 0 {
		return &models.PortfolioHistory{
			UserIdentity:   identity,
			Snapshots:      []models.PortfolioSnapshot{},
			HoldingsHash:   hash,
			LastCalculated: s.now(),
		}, models.CacheMeta{}, nil
	}

	key := historyKey(identity)
	if !forceRefresh {
		if l := s.cache.Read(ctx, key); l.Status == cache.Fresh {
			var cached models.PortfolioHistory
			if err := l.Decode(&cached); err == nil && cached.HoldingsHash == hash {
				filtered := filterTimeframe(cached, timeframe, today)
				return &filtered, models.CacheMeta{Cached: true, AgeSeconds: int(l.Age.Seconds())}, nil
			}
		}
	}

	full, err := s.computeHistory(ctx, identity, holdings, hash, today)
	if err != nil {
		return nil, models.CacheMeta{}, err
	}

	s.cache.Write(ctx, key, full, common.FreshnessHistory)

	filtered := filterTimeframe(*full, timeframe, today)
	return &filtered, models.CacheMeta{}, nil
}

// computeHistory builds the full daily snapshot series from the earliest
// purchase date to today. Live quotes are used only for today's snapshot;
// prior dates resolve to the historical close nearest the date, falling
// back to the holding's own purchase price.
func (s *Service) computeHistory(ctx context.Context, identity string, holdings []models.Holding, hash string, today time.Time) (*models.PortfolioHistory, error) {
	start := earliestPurchase(holdings)
	if start.After(today) {
		start = today
	}

	symbols := distinctSymbols(holdings)

	quoteResults, quoteSummary := s.orch.FetchAll(ctx, symbols, func(callCtx context.Context, symbol string) (any, error) {
		return s.finnhub.GetQuote(callCtx, symbol)
	})
	quotes := fetch.Collected[*models.RealTimeQuote](quoteResults)

	candleResults, candleSummary := s.orch.FetchAll(ctx, symbols, func(callCtx context.Context, symbol string) (any, error) {
		return s.finnhub.GetCandles(callCtx, symbol, "D", start.AddDate(0, 0, -7), today)
	})
	candles := fetch.Collected[[]models.HistoricalPricePoint](candleResults)

	s.logger.Info().
		Str("identity", identity).
		Int("symbols", len(symbols)).
		Int("quote_failures", quoteSummary.Failed).
		Int("candle_failures", candleSummary.Failed).
		Msg("Computing portfolio history")

	snapshots := make([]models.PortfolioSnapshot, 0, int(today.Sub(start).Hours()/24)+1)
	for date := start; !date.After(today); date = date.AddDate(0, 0, 1) {
		dateStr := date.Format("2006-01-02")
		isToday := date.Equal(today)

		var totalValue, totalCost float64
		for _, h := range holdings {
			// A holding bought after this date contributes nothing yet
			if h.PurchaseDate > dateStr {
				continue
			}
			price := s.resolvePrice(h, date, isToday, quotes[h.Symbol], candles[h.Symbol])
			totalValue += h.Shares * price
			totalCost += h.TotalCost
		}

		gainLoss := totalValue - totalCost
		gainLossPct := 0.0
		if totalCost > 0 {
			gainLossPct = gainLoss / totalCost * 100
		}

		snapshots = append(snapshots, models.PortfolioSnapshot{
			Date:            dateStr,
			TotalValue:      round2(totalValue),
			TotalCost:       round2(totalCost),
			GainLoss:        round2(gainLoss),
			GainLossPercent: round2(gainLossPct),
		})
	}

	return &models.PortfolioHistory{
		UserIdentity:   identity,
		Snapshots:      snapshots,
		HoldingsHash:   hash,
		LastCalculated: s.now(),
	}, nil
}

// resolvePrice picks the best available price for a holding on a date:
// live quote for today, else the historical close nearest the date, else
// the purchase price as last resort.
func (s *Service) resolvePrice(h models.Holding, date time.Time, isToday bool, quote *models.RealTimeQuote, bars []models.HistoricalPricePoint) float64 {
	if isToday && quote != nil && quote.Price > 0 {
		return quote.Price
	}
	if price, ok := nearestClose(bars, date); ok {
		return price
	}
	return h.PurchasePrice
}

// nearestClose finds the bar minimizing absolute distance to date.
func nearestClose(bars []models.HistoricalPricePoint, date time.Time) (float64, bool) {
	best := -1
	var bestDiff time.Duration
	for i, bar := range bars {
		t, err := time.Parse("2006-01-02", bar.Date)
		if err != nil || bar.Close <= 0 {
			continue
		}
		diff := date.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if best < 0 {
		return 0, false
	}
	return bars[best].Close, true
}

func earliestPurchase(holdings []models.Holding) time.Time {
	var earliest time.Time
	for _, h := range holdings {
		t, err := time.Parse("2006-01-02", h.PurchaseDate)
		if err != nil {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

func distinctSymbols(holdings []models.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			symbols = append(symbols, h.Symbol)
		}
	}
	return symbols
}

// filterTimeframe slices the full series down to the requested window.
func filterTimeframe(full models.PortfolioHistory, timeframe string, today time.Time) models.PortfolioHistory {
	if timeframe == models.TimeframeAll {
		return full
	}

	cutoff := today.AddDate(0, 0, -timeframeDays[timeframe]).Format("2006-01-02")
	filtered := make([]models.PortfolioSnapshot, 0, len(full.Snapshots))
	for _, snap := range full.Snapshots {
		if snap.Date >= cutoff {
			filtered = append(filtered, snap)
		}
	}

	out := full
	out.Snapshots = filtered
	return out
}
