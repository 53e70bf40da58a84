package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DueLayout is the canonical shape of a stored due string (local time, minute precision).
const DueLayout = "2006-01-02T15:04"

// DisplayLayout is how a due instant is shown next to an item.
const DisplayLayout = "2006/01/02 15:04"

// ErrInvalidDue is returned by NormalizeDue for input it cannot understand.
var ErrInvalidDue = errors.New("invalid due")

// local layouts accepted on read and on input, tried in order
var localLayouts = []string{
	DueLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	DisplayLayout,
	"2006-01-02",
}

// ParseDue turns a stored due string into an instant in the host's local zone.
// Empty or unparseable strings report ok=false and are treated as "no deadline".
func ParseDue(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local(), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDue converts user input into the canonical due string.
// Accepts any layout ParseDue reads plus relative offsets like "+90m", "+2h" or "+3d".
// Empty input yields an empty due (no deadline).
func NormalizeDue(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	if strings.HasPrefix(input, "+") {
		d, err := parseOffset(input[1:])
		if err != nil {
			return "", fmt.Errorf("%w %q: %v", ErrInvalidDue, input, err)
		}
		return now.Add(d).Local().Format(DueLayout), nil
	}
	t, ok := ParseDue(input)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrInvalidDue, input)
	}
	return t.Format(DueLayout), nil
}

const day = 24 * time.Hour

// maxOffsetDays is the largest day count a time.Duration can hold.
const maxOffsetDays = math.MaxInt64 / int64(day)

// parseOffset extends time.ParseDuration with a "d" (24h) unit.
func parseOffset(s string) (time.Duration, error) {
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil {
			return 0, err
		}
		if days < 0 {
			return 0, errors.New("negative offset")
		}
		if int64(days) > maxOffsetDays {
			return 0, errors.New("offset too large")
		}
		return time.Duration(days) * day, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("negative offset")
	}
	return d, nil
}
