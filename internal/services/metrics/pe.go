// Package metrics implements the derived-metric calculators for StockPulse
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// P/E sanity bounds. Values outside (0, 500) are discarded as unreasonable,
// never returned.
const (
	peLowerBound = 0.0
	peUpperBound = 500.0
)

// syntheticPEPoints is the length of the estimated fallback series.
const syntheticPEPoints = 20

// minRealPEPoints is the threshold below which the real series is replaced
// by the estimated fallback.
const minRealPEPoints = 4

// ComputePEHistory builds a quarterly historical P/E series from quarterly
// EPS reports and monthly price bars. Earnings are expected most recent
// first; duplicates by (year, quarter) keep the first seen, so the most
// recent filing wins. Each TTM EPS figure is matched to the price point
// closest in time to the quarter end.
//
// When fewer than 4 valid points survive, a synthetic 20-point series is
// generated from currentPE using a damped oscillation for visual
// continuity. That fallback is estimation, not data, and is flagged by
// Source = "estimated".
func ComputePEHistory(symbol string, earnings []models.EarningsReport, monthlyPrices []models.HistoricalPricePoint, currentPE float64, now time.Time) *models.PEHistory {
	quarters := dedupEarnings(earnings)
	points := realPEPoints(quarters, monthlyPrices)

	source := models.SourceFinnhub
	if len(points) < minRealPEPoints {
		points = syntheticPESeries(currentPE, now)
		source = models.SourceEstimated
	}

	return &models.PEHistory{
		Symbol:    symbol,
		Current:   currentPE,
		Average:   averagePE(points),
		Points:    points,
		Source:    source,
		FetchedAt: now,
	}
}

// dedupEarnings drops duplicate (year, quarter) reports keeping the first
// seen, then sorts ascending by period.
func dedupEarnings(earnings []models.EarningsReport) []models.EarningsReport {
	seen := make(map[[2]int]bool, len(earnings))
	out := make([]models.EarningsReport, 0, len(earnings))
	for _, e := range earnings {
		k := [2]int{e.Year, e.Quarter}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Quarter < out[j].Quarter
	})
	return out
}

func realPEPoints(quarters []models.EarningsReport, monthlyPrices []models.HistoricalPricePoint) []models.PEPoint {
	if len(quarters) < 4 || len(monthlyPrices) == 0 {
		return nil
	}

	points := make([]models.PEPoint, 0, len(quarters)-3)
	for i := 3; i < len(quarters); i++ {
		ttm := quarters[i].EPS + quarters[i-1].EPS + quarters[i-2].EPS + quarters[i-3].EPS
		if ttm == 0 {
			continue
		}

		quarterEnd := quarterEndDate(quarters[i])
		price, ok := closestPrice(monthlyPrices, quarterEnd)
		if !ok {
			continue
		}

		pe := price / ttm
		if pe <= peLowerBound || pe >= peUpperBound {
			continue
		}
		points = append(points, models.PEPoint{
			Date: quarterEnd.Format("2006-01-02"),
			PE:   round2(pe),
		})
	}
	return points
}

// quarterEndDate resolves the quarter-end from the report period, falling
// back to the calendar quarter boundary.
func quarterEndDate(r models.EarningsReport) time.Time {
	if t, err := time.Parse("2006-01-02", r.Period); err == nil {
		return t
	}
	month := time.Month(r.Quarter * 3)
	if month < time.March || month > time.December {
		month = time.December
	}
	return time.Date(r.Year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// closestPrice finds the price point minimizing absolute time distance to
// target.
func closestPrice(prices []models.HistoricalPricePoint, target time.Time) (float64, bool) {
	best := -1
	var bestDiff time.Duration
	for i, p := range prices {
		t, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		diff := target.Sub(t)
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
	return prices[best].Close, true
}

// syntheticPESeries fabricates a monthly series around currentPE using a
// damped sin oscillation. Output is bounded to the same (0, 500) range as
// real values.
func syntheticPESeries(currentPE float64, now time.Time) []models.PEPoint {
	base := currentPE
	if base <= peLowerBound || base >= peUpperBound {
		base = 20.0
	}

	points := make([]models.PEPoint, 0, syntheticPEPoints)
	for i := 0; i < syntheticPEPoints; i++ {
		// i=0 is the oldest point, 20 months back
		monthsBack := syntheticPEPoints - 1 - i
		wobble := 0.12 * math.Sin(float64(i)*0.9) * math.Pow(0.92, float64(monthsBack))
		pe := base * (1 + wobble)
		if pe <= peLowerBound {
			pe = base
		}
		if pe >= peUpperBound {
			pe = peUpperBound - 1
		}
		points = append(points, models.PEPoint{
			Date: now.AddDate(0, -monthsBack, 0).Format("2006-01-02"),
			PE:   round2(pe),
		})
	}
	return points
}

func averagePE(points []models.PEPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.PE
	}
	return round2(sum / float64(len(points)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
