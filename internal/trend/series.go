package trend

import (
	"math"
	"time"
)

// Point is one dated value. Value may be NaN for metrics that are undefined
// on days without a run (pace).
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a time-ordered list of points, one per calendar day once
// regularized.
type Series []Point

// Defined returns true if the point carries a real value.
func (p Point) Defined() bool {
	return !math.IsNaN(p.Value)
}

// ValueAt returns the value for the given day and whether the series has a
// point on that day.
func (s Series) ValueAt(date time.Time) (float64, bool) {
	d := DateOnly(date)
	for _, p := range s {
		if p.Date.Equal(d) {
			return p.Value, true
		}
	}
	return 0, false
}

// Last returns the newest defined point, scanning backwards past NaN gaps.
func (s Series) Last() (Point, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Defined() {
			return s[i], true
		}
	}
	return Point{}, false
}

// Max returns the largest defined value in the series.
func (s Series) Max() (Point, bool) {
	best := Point{Value: math.Inf(-1)}
	found := false
	for _, p := range s {
		if p.Defined() && p.Value > best.Value {
			best = p
			found = true
		}
	}
	return best, found
}

// DateOnly truncates a timestamp to its calendar day in UTC. All series
// arithmetic keys on these day values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
