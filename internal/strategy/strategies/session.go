package strategies

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// SessionWindow is a time-of-day interval, inclusive at both ends at minute
// resolution, evaluated in Location. A nil Location uses the zone the
// timestamp already carries.
type SessionWindow struct {
	Start    time.Duration // Offset from midnight
	End      time.Duration
	Location *time.Location
}

// DefaultLiquidationWindow is 15:55 to 16:00 New York time.
func DefaultLiquidationWindow() SessionWindow {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = nil
	}
	return SessionWindow{Start: 15*time.Hour + 55*time.Minute, End: 16 * time.Hour, Location: loc}
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Validate checks the window lies within one day and is not inverted.
func (w SessionWindow) Validate() error {
	if w.Start < 0 || w.End >= 24*time.Hour {
		return fmt.Errorf("session window %s must lie within a single day", w)
	}
	if w.End < w.Start {
		return fmt.Errorf("session window %s ends before it starts", w)
	}
	return nil
}

// Contains reports whether t falls inside the window.
func (w SessionWindow) Contains(t time.Time) bool {
	if w.Location != nil {
		t = t.In(w.Location)
	}
	tod := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return tod >= w.Start && tod <= w.End
}

func (w SessionWindow) String() string {
	zone := "local"
	if w.Location != nil {
		zone = w.Location.String()
	}
	return fmt.Sprintf("%s-%s %s", clock(w.Start), clock(w.End), zone)
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
