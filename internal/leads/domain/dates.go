package domain

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DayLayout is the format of calendar days exchanged with clients.
const DayLayout = "2006-01-02"

// MaxWindowDays bounds a requested window; summaries carry one daily point
// per day.
const MaxWindowDays = 366

var saoPaulo = mustLoadLocation("America/Sao_Paulo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Location is the time zone reference dates are computed in.
func Location() *time.Location {
	return saoPaulo
}

// ReferenceDate returns the calendar day of t in São Paulo.
func ReferenceDate(t time.Time) string {
	return t.In(saoPaulo).Format(DayLayout)
}

// Window is a half-open interval [Start, EndExclusive) of whole days.
type Window struct {
	Start        time.Time `json:"start"`
	EndExclusive time.Time `json:"endExclusive"`
}

// NewWindow builds a window from inclusive calendar days.
func NewWindow(startDay, endDay string) (Window, error) {
	start, err := time.ParseInLocation(DayLayout, startDay, saoPaulo)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start day %q", startDay)
	}
	end, err := time.ParseInLocation(DayLayout, endDay, saoPaulo)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end day %q", endDay)
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("end day %s is before start day %s", endDay, startDay)
	}
	endExclusive := end.AddDate(0, 0, 1)
	if endExclusive.After(start.AddDate(0, 0, MaxWindowDays)) {
		return Window{}, fmt.Errorf("window must not exceed %d days", MaxWindowDays)
	}
	return Window{Start: start, EndExclusive: endExclusive}, nil
}

// LastDays returns the window of the n calendar days ending on the day of now.
func LastDays(now time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	local := now.In(saoPaulo)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, saoPaulo)
	return Window{Start: today.AddDate(0, 0, -(n - 1)), EndExclusive: today.AddDate(0, 0, 1)}
}

// Days lists every calendar day in the window.
func (w Window) Days() []string {
	var days []string
	for d := w.Start.In(saoPaulo); d.Before(w.EndExclusive); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayLayout))
	}
	return days
}

// Key is a stable textual form used in cache keys.
func (w Window) Key() string {
	return w.Start.In(saoPaulo).Format(DayLayout) + ".." + w.EndExclusive.In(saoPaulo).Format(DayLayout)
}
