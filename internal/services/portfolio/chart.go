package portfolio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// RenderHistoryChart renders the identity's history series as a PNG line
// chart: portfolio value (blue solid) against total cost (gray dashed).
func (s *Service) RenderHistoryChart(ctx context.Context, identity, timeframe string) ([]byte, error) {
	history, _, err := s.GetHistory(ctx, identity, timeframe, false)
	if err != nil {
		return nil, err
	}
	return renderSnapshots(history.Snapshots)
}

func renderSnapshots(snapshots []models.PortfolioSnapshot) ([]byte, error) {
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(snapshots))
	}

	xValues := make([]time.Time, 0, len(snapshots))
	valueY := make([]float64, 0, len(snapshots))
	costY := make([]float64, 0, len(snapshots))

	for _, snap := range snapshots {
		t, err := time.Parse("2006-01-02", snap.Date)
		if err != nil {
			continue
		}
		xValues = append(xValues, t)
		valueY = append(valueY, snap.TotalValue)
		costY = append(costY, snap.TotalCost)
	}
	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 parsable data points")
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	costSeries := chart.TimeSeries{
		Name: "Total Cost",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: costY,
	}

	graph := chart.Chart{
		Title:  "Portfolio History",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			costSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
