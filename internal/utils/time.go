package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/momentum/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// TodayKey returns the YYYY-MM-DD key of now in now's own location.
func TodayKey(now time.Time) string {
	return now.Format(constants.DateFormat)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", dateStr)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// DayWindow returns the inclusive wall-clock range [day 00:00:00, day 23:59:59]
// in loc. Instants after 23:59:59 but before the next midnight fall outside.
func DayWindow(day string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	start, err = ParseDateInLocation(day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 59, 0, loc)
	return start, end, nil
}

// InWindow reports whether t lies in [start, end], both ends included.
func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
