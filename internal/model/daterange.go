package model

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive window of calendar days (UTC)
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseDateRange parses YYYY-MM-DD bounds. Both empty means "no window" and returns nil.
func ParseDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("both start_date and end_date are required")
	}
	start, err := time.ParseInLocation(DateLayout, from, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q, use YYYY-MM-DD", from)
	}
	end, err := time.ParseInLocation(DateLayout, to, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date %q, use YYYY-MM-DD", to)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_date cannot be before start_date")
	}
	return &DateRange{From: start, To: end}, nil
}

// Bounds returns [start of From, start of the day after To)
func (r DateRange) Bounds() (time.Time, time.Time) {
	y, m, d := r.From.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = r.To.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return start, end
}
