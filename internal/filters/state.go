package filters

import "time"

const (
	DateLayout = "2006-01-02"
	HourLayout = "15:04"
)

// DateRange bounds the analytics window. Both ends are YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

// AmountRange holds raw numeric strings; empty means unset.
type AmountRange struct {
	Min string `json:"min" validate:"omitempty,numeric"`
	Max string `json:"max" validate:"omitempty,numeric"`
}

// HourRange holds HH:MM strings; empty means unset.
type HourRange struct {
	Start string `json:"start" validate:"omitempty,datetime=15:04"`
	End   string `json:"end" validate:"omitempty,datetime=15:04"`
}

// State is the dashboard-wide filter selection shared by every view.
// Range ordering is not checked; the backend decides what an inverted range means.
type State struct {
	DateRange   DateRange   `json:"date_range"`
	AmountRange AmountRange `json:"amount_range"`
	HourRange   HourRange   `json:"hour_range"`
}

// Default returns the initial selection: the last days days up to today, nothing else set.
func Default(now time.Time, days int) State {
	if days < 0 {
		days = 0
	}
	return State{
		DateRange: DateRange{
			Start: now.AddDate(0, 0, -days).Format(DateLayout),
			End:   now.Format(DateLayout),
		},
	}
}
