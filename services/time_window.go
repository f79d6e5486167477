package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AssignmentDuration is how long a table stays bound to a reservation,
// counted from the reservation's start.
const AssignmentDuration = 2 * time.Hour

const dateLayout = "2006-01-02"

// Window is the occupancy interval of a reservation.
type Window struct {
	Start     time.Time
	ExpiresAt time.Time
}

// ReservationWindow combines date and an "HH:mm" clock in loc and returns
// the interval [start, start+2h).
func ReservationWindow(date, clock string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}

	day, err := NormalizeDate(date)
	if err != nil {
		return Window{}, err
	}
	hour, minute, err := parseClock(clock)
	if err != nil {
		return Window{}, err
	}

	d, _ := time.Parse(dateLayout, day)
	start := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	return Window{Start: start, ExpiresAt: start.Add(AssignmentDuration)}, nil
}

// NormalizeDate accepts "YYYY-MM-DD" or an RFC3339 timestamp and returns
// the calendar date as "YYYY-MM-DD".
func NormalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", invalid("date", "is required")
	}
	if d, err := time.Parse(dateLayout, date); err == nil {
		return d.Format(dateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, date); err == nil {
		return ts.Format(dateLayout), nil
	}
	return "", invalid("date", fmt.Sprintf("%q is not a valid date (expected YYYY-MM-DD)", date))
}

// NormalizeClock validates an "HH:mm" clock and zero-pads the hour.
func NormalizeClock(clock string) (string, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func parseClock(clock string) (int, int, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0, 0, invalid("time", "is required")
	}

	bad := invalid("time", fmt.Sprintf("%q is not a valid time (expected HH:mm)", clock))
	h, m, ok := strings.Cut(clock, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 {
		return 0, 0, bad
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 || !isDigits(h) {
		return 0, 0, bad
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || !isDigits(m) {
		return 0, 0, bad
	}
	return hour, minute, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
