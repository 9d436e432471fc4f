package charts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resto-dashboard/internal/models"
)

func point(date string, orders int64, revenue, avg float64) models.TrendPoint {
	return models.TrendPoint{
		Date:          date,
		DailyOrders:   orders,
		DailyRevenue:  models.Number(revenue),
		AvgOrderValue: models.Number(avg),
	}
}

func TestSummarizeAveragesDailyAverages(t *testing.T) {
	points := []models.TrendPoint{
		point("2024-06-01", 1, 10, 10),
		point("2024-06-02", 3, 60, 20),
	}

	summary := Summarize(points)
	require.Equal(t, int64(4), summary.TotalOrders)
	require.InDelta(t, 70.0, summary.TotalRevenue, 1e-9)
	require.InDelta(t, 15.0, summary.AvgOrderValue, 1e-9)
	require.InDelta(t, 17.5, summary.RevenuePerOrder, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	require.Equal(t, Summary{}, Summarize(nil))

	summary := Summarize([]models.TrendPoint{point("2024-06-01", 0, 0, 0)})
	require.Zero(t, summary.RevenuePerOrder)
}

func TestSummarizeParsesStringNumbers(t *testing.T) {
	var points []models.TrendPoint
	require.NoError(t, json.Unmarshal([]byte(`[
		{"date":"2024-06-01","daily_orders":2,"daily_revenue":"100.50","avg_order_value":"50.25"},
		{"date":"2024-06-02","daily_orders":1,"daily_revenue":49.5,"avg_order_value":49.5}
	]`), &points))

	summary := Summarize(points)
	require.InDelta(t, 150.0, summary.TotalRevenue, 1e-9)
	require.InDelta(t, 49.875, summary.AvgOrderValue, 1e-9)
}

func TestSeriesLabels(t *testing.T) {
	points := []models.TrendPoint{
		point("2024-01-02", 5, 120, 24),
		point("not-a-date", 1, 1, 1),
	}

	orders := DailyOrders(points)
	require.Len(t, orders, 2)
	require.Equal(t, "Jan 02", orders[0].Label)
	require.Equal(t, "Jan 02, 2024", orders[0].Tooltip)
	require.Equal(t, 5.0, orders[0].Value)
	require.Equal(t, "not-a-date", orders[1].Label)

	revenue := DailyRevenue(points)
	require.Equal(t, 120.0, revenue[0].Value)
}

func TestOrderValueDistributionCyclesPalette(t *testing.T) {
	points := make([]models.TrendPoint, 7)
	for i := range points {
		points[i] = point("2024-06-01", 1, 1, float64(i+1))
	}

	slices := OrderValueDistribution(points)
	require.Len(t, slices, 7)
	require.Equal(t, "Day 1", slices[0].Name)
	require.Equal(t, "Day 7", slices[6].Name)
	require.Equal(t, 7.0, slices[6].Value)
	require.Equal(t, Palette[0], slices[0].Color)
	require.Equal(t, Palette[0], slices[6].Color)
}

func TestPeakHoursOrderedByHour(t *testing.T) {
	bars := PeakHours(models.PeakHours{
		"14": {Hour: 14, OrderCount: 2},
		"9":  {Hour: 9, OrderCount: 5},
	})

	require.Len(t, bars, 2)
	require.Equal(t, 9, bars[0].Hour)
	require.Equal(t, "9:00", bars[0].Label)
	require.Equal(t, int64(5), bars[0].Orders)
	require.Equal(t, 14, bars[1].Hour)
}

func TestPeakHoursEmpty(t *testing.T) {
	require.Empty(t, PeakHours(nil))
}

func TestBuildFlagsEmptyCharts(t *testing.T) {
	dashboard := Build(models.Trends{PeakHours: models.PeakHours{"0": {Hour: 0, OrderCount: 1}}})
	require.True(t, dashboard.TrendsEmpty)
	require.False(t, dashboard.PeakHoursEmpty)
	require.Len(t, dashboard.PeakHours, 1)
	require.Equal(t, "0:00", dashboard.PeakHours[0].Label)
	require.NotNil(t, dashboard.DailyOrders)
}
