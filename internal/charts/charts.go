package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/noah-isme/resto-dashboard/internal/models"
)

const (
	labelLayout   = "Jan 02"
	tooltipLayout = "Jan 02, 2006"
)

// Palette is cycled through by the order value distribution slices.
var Palette = []string{"#3B82F6", "#10B981", "#8B5CF6", "#F59E0B", "#EF4444", "#6B7280"}

// Summary aggregates a trends series.
type Summary struct {
	TotalOrders  int64   `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	// AvgOrderValue is the mean of the per-day averages, not revenue over orders.
	AvgOrderValue   float64 `json:"avg_order_value"`
	RevenuePerOrder float64 `json:"revenue_per_order"`
}

// Point is one day on a line or bar chart.
type Point struct {
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Tooltip string  `json:"tooltip"`
	Value   float64 `json:"value"`
}

// Slice is one segment of the order value pie.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Bar is one hour on the peak hours chart.
type Bar struct {
	Hour   int    `json:"hour"`
	Label  string `json:"label"`
	Orders int64  `json:"orders"`
}

// Dashboard is every chart derived from one trends payload.
type Dashboard struct {
	Summary        Summary `json:"summary"`
	DailyOrders    []Point `json:"daily_orders"`
	DailyRevenue   []Point `json:"daily_revenue"`
	Distribution   []Slice `json:"order_value_distribution"`
	PeakHours      []Bar   `json:"peak_hours"`
	TrendsEmpty    bool    `json:"trends_empty"`
	PeakHoursEmpty bool    `json:"peak_hours_empty"`
}

// Summarize totals orders and revenue and averages the daily average order values.
func Summarize(points []models.TrendPoint) Summary {
	var summary Summary
	if len(points) == 0 {
		return summary
	}

	var avgSum float64
	for _, point := range points {
		summary.TotalOrders += point.DailyOrders
		summary.TotalRevenue += point.DailyRevenue.Float64()
		avgSum += point.AvgOrderValue.Float64()
	}
	summary.AvgOrderValue = avgSum / float64(len(points))
	if summary.TotalOrders > 0 {
		summary.RevenuePerOrder = summary.TotalRevenue / float64(summary.TotalOrders)
	}
	return summary
}

// DailyOrders maps each day to its order count.
func DailyOrders(points []models.TrendPoint) []Point {
	return series(points, func(p models.TrendPoint) float64 { return float64(p.DailyOrders) })
}

// DailyRevenue maps each day to its revenue.
func DailyRevenue(points []models.TrendPoint) []Point {
	return series(points, func(p models.TrendPoint) float64 { return p.DailyRevenue.Float64() })
}

func series(points []models.TrendPoint, value func(models.TrendPoint) float64) []Point {
	out := make([]Point, 0, len(points))
	for _, point := range points {
		label, tooltip := formatDate(point.Date)
		out = append(out, Point{
			Date:    point.Date,
			Label:   label,
			Tooltip: tooltip,
			Value:   value(point),
		})
	}
	return out
}

// OrderValueDistribution names one slice per day, "Day 1" first.
func OrderValueDistribution(points []models.TrendPoint) []Slice {
	out := make([]Slice, 0, len(points))
	for i, point := range points {
		out = append(out, Slice{
			Name:  fmt.Sprintf("Day %d", i+1),
			Value: point.AvgOrderValue.Float64(),
			Color: Palette[i%len(Palette)],
		})
	}
	return out
}

// PeakHours returns one bar per bucket ordered by hour. Hours missing from the
// payload get no bar.
func PeakHours(buckets models.PeakHours) []Bar {
	type keyed struct {
		key    string
		hour   int
		numKey bool
		bucket models.PeakHourBucket
	}

	entries := make([]keyed, 0, len(buckets))
	for key, bucket := range buckets {
		entry := keyed{key: key, bucket: bucket, hour: math.MaxInt}
		if n, err := strconv.Atoi(key); err == nil {
			entry.hour = n
			entry.numKey = true
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].numKey != entries[j].numKey {
			return entries[i].numKey
		}
		if entries[i].hour != entries[j].hour {
			return entries[i].hour < entries[j].hour
		}
		return entries[i].key < entries[j].key
	})

	out := make([]Bar, 0, len(entries))
	for _, entry := range entries {
		hour := entry.bucket.Hour
		if entry.numKey && hour == 0 {
			hour = entry.hour
		}
		out = append(out, Bar{
			Hour:   hour,
			Label:  fmt.Sprintf("%d:00", hour),
			Orders: entry.bucket.OrderCount,
		})
	}
	return out
}

// Build derives every chart from trends.
func Build(trends models.Trends) Dashboard {
	return Dashboard{
		Summary:        Summarize(trends.Trends),
		DailyOrders:    DailyOrders(trends.Trends),
		DailyRevenue:   DailyRevenue(trends.Trends),
		Distribution:   OrderValueDistribution(trends.Trends),
		PeakHours:      PeakHours(trends.PeakHours),
		TrendsEmpty:    len(trends.Trends) == 0,
		PeakHoursEmpty: len(trends.PeakHours) == 0,
	}
}

func formatDate(raw string) (string, string) {
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(labelLayout), parsed.Format(tooltipLayout)
		}
	}
	return raw, raw
}
