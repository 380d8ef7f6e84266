package tracker

import (
	"fmt"
	"time"

	"github.com/nakachan-ing/daytask/internal/model"
)

// Clock reports the current instant. Tests pin it.
type Clock func() time.Time

// LoadLocation resolves a configured timezone name. Empty and "Local" both
// mean the device's local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// Today is the calendar date of clock() in loc. The day rolls over at
// midnight in loc.
func Today(clock Clock, loc *time.Location) string {
	return clock().In(loc).Format(model.DateLayout)
}

// NextDay returns the civil date after date. The arithmetic is done on the
// calendar (AddDate) at midnight in loc, never by adding 24h, so DST
// transitions cannot skip or repeat a day.
func NextDay(date string, loc *time.Location) (string, error) {
	d, err := time.ParseInLocation(model.DateLayout, date, loc)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d.AddDate(0, 0, 1).Format(model.DateLayout), nil
}

// ValidDate reports whether s is a yyyy-mm-dd calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}
