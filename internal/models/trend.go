package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TrendPoint is one day's aggregated order metrics for a restaurant.
type TrendPoint struct {
	Date          string `json:"date"`
	DailyOrders   int64  `json:"daily_orders"`
	DailyRevenue  Number `json:"daily_revenue"`
	AvgOrderValue Number `json:"avg_order_value"`
}

// PeakHourBucket counts orders placed during one hour of the day.
type PeakHourBucket struct {
	Hour       int   `json:"hour"`
	OrderCount int64 `json:"order_count"`
}

// PeakHours maps hour-of-day keys ("9", "14") to their bucket.
type PeakHours map[string]PeakHourBucket

// UnmarshalJSON accepts an object keyed by hour or a plain list of buckets,
// which is what the backend emits when the keys happen to be sequential.
func (p *PeakHours) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var buckets []PeakHourBucket
		if err := json.Unmarshal(data, &buckets); err != nil {
			return err
		}
		out := make(PeakHours, len(buckets))
		for _, bucket := range buckets {
			out[strconv.Itoa(bucket.Hour)] = bucket
		}
		*p = out
		return nil
	}

	var keyed map[string]PeakHourBucket
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	*p = PeakHours(keyed)
	return nil
}

// Trends is the per-restaurant trends payload.
type Trends struct {
	Trends    []TrendPoint `json:"trends"`
	PeakHours PeakHours    `json:"peak_hours"`
}

// Empty reports whether the payload carries no records at all.
func (t Trends) Empty() bool {
	return len(t.Trends) == 0 && len(t.PeakHours) == 0
}
