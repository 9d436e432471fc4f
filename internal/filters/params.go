package filters

import (
	"net/url"
	"strconv"
	"strings"
)

func setIfPresent(values url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		values.Set(key, value)
	}
}

func dateParams(state State) url.Values {
	values := url.Values{}
	setIfPresent(values, "start_date", state.DateRange.Start)
	setIfPresent(values, "end_date", state.DateRange.End)
	return values
}

func amountParams(values url.Values, state State) {
	setIfPresent(values, "min_amount", state.AmountRange.Min)
	setIfPresent(values, "max_amount", state.AmountRange.Max)
}

// hourOf returns the HH part of an HH:MM value.
func hourOf(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, ':'); idx >= 0 {
		return value[:idx]
	}
	return value
}

// OverviewParams builds the query for the dashboard overview.
func OverviewParams(state State) url.Values {
	return dateParams(state)
}

// TopParams builds the query for the top restaurants ranking.
func TopParams(state State, limit int) url.Values {
	values := dateParams(state)
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	return values
}

// OrderParams builds the order list query. The orders endpoint filters on whole
// hours, so only the hour part of the hour range is sent.
func OrderParams(state State, page, perPage int) url.Values {
	values := dateParams(state)
	if page < 1 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		values.Set("per_page", strconv.Itoa(perPage))
	}
	amountParams(values, state)
	if start := hourOf(state.HourRange.Start); start != "" {
		values.Set("start_hour", start)
	}
	if end := hourOf(state.HourRange.End); end != "" {
		values.Set("end_hour", end)
	}
	return values
}

// TrendParams builds the restaurant trends query. Hours are sent as HH:MM.
func TrendParams(state State) url.Values {
	values := dateParams(state)
	amountParams(values, state)
	setIfPresent(values, "start_hour", state.HourRange.Start)
	setIfPresent(values, "end_hour", state.HourRange.End)
	return values
}
