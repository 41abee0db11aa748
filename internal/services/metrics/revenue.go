package metrics

import (
	"sort"
	"time"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// revenueConcepts is the ordered fallback list of standardized accounting
// tags a revenue figure may be filed under. First match with a positive
// value wins.
var revenueConcepts = []string{
	"us-gaap_RevenueFromContractWithCustomerExcludingAssessedTax",
	"us-gaap_Revenues",
	"us-gaap_SalesRevenueNet",
	"us-gaap_RevenueFromContractWithCustomerIncludingAssessedTax",
	"us-gaap_SalesRevenueGoodsNet",
}

// ComputeRevenueGrowth extracts quarterly revenue from filed reports and
// computes YoY growth against the same quarter one year prior. 10-K filings
// count as Q4; 10-Q filings carry their reported quarter. Duplicate
// (year, quarter) pairs keep the first seen.
func ComputeRevenueGrowth(symbol string, reports []models.FinancialReport, now time.Time) *models.RevenueGrowth {
	type quarterKey struct{ year, quarter int }
	revenues := make(map[quarterKey]float64)
	order := make([]quarterKey, 0, len(reports))

	for _, r := range reports {
		quarter := r.Quarter
		if r.Form == "10-K" {
			quarter = 4
		}
		if quarter < 1 || quarter > 4 || r.Year == 0 {
			continue
		}

		key := quarterKey{year: r.Year, quarter: quarter}
		if _, exists := revenues[key]; exists {
			continue // first-seen wins
		}

		revenue, ok := extractRevenue(r.Concepts)
		if !ok {
			continue
		}
		revenues[key] = revenue
		order = append(order, key)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].quarter < order[j].quarter
	})

	points := make([]models.RevenuePoint, 0, len(order))
	var growthSum float64
	var growthCount int
	for _, key := range order {
		p := models.RevenuePoint{
			Year:    key.year,
			Quarter: key.quarter,
			Revenue: revenues[key],
		}
		if prev, ok := revenues[quarterKey{year: key.year - 1, quarter: key.quarter}]; ok && prev != 0 {
			growth := round2((revenues[key] - prev) / prev * 100)
			p.YoYGrowth = &growth
			growthSum += growth
			growthCount++
		}
		points = append(points, p)
	}

	avg := 0.0
	if growthCount > 0 {
		avg = round2(growthSum / float64(growthCount))
	}

	return &models.RevenueGrowth{
		Symbol:        symbol,
		Points:        points,
		AverageGrowth: avg,
		Source:        models.SourceFinnhub,
		FetchedAt:     now,
	}
}

func extractRevenue(concepts []models.ReportConcept) (float64, bool) {
	for _, wanted := range revenueConcepts {
		for _, c := range concepts {
			if c.Concept == wanted && c.Value > 0 {
				return c.Value, true
			}
		}
	}
	return 0, false
}
