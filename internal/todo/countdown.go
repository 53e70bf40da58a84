package todo

import (
	"fmt"
	"time"
)

// Countdown is the time left until a due instant, at minute granularity.
// Hours and Minutes are already reduced (mod 24, mod 60).
type Countdown struct {
	Expired bool
	Days    int
	Hours   int
	Minutes int
}

// Remaining computes due - now. Zero or negative is expired.
func Remaining(due, now time.Time) Countdown {
	diff := due.Sub(now)
	if diff <= 0 {
		return Countdown{Expired: true}
	}
	mins := int(diff / time.Minute)
	hours := mins / 60
	return Countdown{
		Days:    hours / 24,
		Hours:   hours % 24,
		Minutes: mins % 60,
	}
}

// String shows the two coarsest units present.
func (c Countdown) String() string {
	switch {
	case c.Expired:
		return "expired"
	case c.Days > 0:
		return fmt.Sprintf("%dd %dh left", c.Days, c.Hours)
	case c.Hours > 0:
		return fmt.Sprintf("%dh %dm left", c.Hours, c.Minutes)
	default:
		return fmt.Sprintf("%dm left", c.Minutes)
	}
}
