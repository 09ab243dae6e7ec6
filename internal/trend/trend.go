// Package trend turns irregular run records into regular daily series and
// centered rolling weekly trend series.
package trend

import (
	"math"
	"time"

	"github.com/jgehrcke/runni/internal/ingest"
)

// DefaultWindowDays is the default rolling window width. Widths below 7
// days produce a statistically noisy trend and are discouraged, but not
// rejected.
const DefaultWindowDays = 14

// Result holds the regular per-day series and the centered rolling
// per-week series for each metric. The pace series contain NaN on days
// without a run; a day without a run has no meaningful pace.
type Result struct {
	WindowDays  int
	HasDuration bool

	DailyKm  Series
	WeeklyKm Series

	DailyHours  Series
	WeeklyHours Series

	DailyPace  Series
	WeeklyPace Series
}

// Empty reports whether no runs survived ingestion.
func (r Result) Empty() bool {
	return len(r.DailyKm) == 0
}

type dayAccum struct {
	km      float64
	hours   float64
	paceSum float64
	paceN   int
}

// Aggregate runs the full transform: per-day grouping, regularization to
// one point per calendar day, elapsed-time rolling aggregation normalized
// to per-week units, and centering of the window output.
//
// Per-day pace is the mean of per-run paces, not total duration over total
// distance. Two 5 km runs at 5:00/km and 6:00/km average to 5:30/km even
// though the slower run took longer.
func Aggregate(runs []ingest.Run, windowDays int) Result {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	res := Result{WindowDays: windowDays}
	if len(runs) == 0 {
		return res
	}

	byDay := make(map[time.Time]*dayAccum)
	var first, last time.Time
	for _, r := range runs {
		day := DateOnly(r.Date)
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}

		acc := byDay[day]
		if acc == nil {
			acc = &dayAccum{}
			byDay[day] = acc
		}
		acc.km += r.Km
		if r.HasDuration {
			res.HasDuration = true
			acc.hours += r.Hours()
			if r.Km > 0 {
				acc.paceSum += r.PaceMinPerKm()
				acc.paceN++
			}
		}
	}

	res.DailyKm = regularize(first, last, func(acc *dayAccum) float64 {
		if acc == nil {
			return 0
		}
		return acc.km
	}, byDay)
	res.DailyHours = regularize(first, last, func(acc *dayAccum) float64 {
		if acc == nil {
			return 0
		}
		return acc.hours
	}, byDay)
	res.DailyPace = regularize(first, last, func(acc *dayAccum) float64 {
		if acc == nil || acc.paceN == 0 {
			return math.NaN()
		}
		return acc.paceSum / float64(acc.paceN)
	}, byDay)

	perWeek := float64(windowDays) / 7.0
	res.WeeklyKm = center(scale(rollingSum(res.DailyKm, windowDays), 1/perWeek), windowDays)
	res.WeeklyHours = center(scale(rollingSum(res.DailyHours, windowDays), 1/perWeek), windowDays)
	res.WeeklyPace = center(rollingMean(res.DailyPace, windowDays), windowDays)

	return res
}

// regularize emits exactly one point per calendar day from first to last
// inclusive, pulling the value for each day through pick (which sees nil
// for days without data).
func regularize(first, last time.Time, pick func(*dayAccum) float64, byDay map[time.Time]*dayAccum) Series {
	var s Series
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		s = append(s, Point{Date: day, Value: pick(byDay[day])})
	}
	return s
}

// rollingSum computes, for every day d in the series, the sum of values on
// days within (d - windowDays, d]. The window is keyed by elapsed calendar
// time via a two-pointer sweep over dates, so it spans exactly windowDays
// days even if the series ever carried gaps. NaN values are skipped, as in
// the per-day input they mark absent data, not zero.
func rollingSum(s Series, windowDays int) Series {
	return rolling(s, windowDays, func(sum float64, n int) float64 {
		return sum
	})
}

// rollingMean is rollingSum's counterpart for averaged metrics: the window
// value is the mean of the defined points inside it, NaN when there are
// none.
func rollingMean(s Series, windowDays int) Series {
	return rolling(s, windowDays, func(sum float64, n int) float64 {
		if n == 0 {
			return math.NaN()
		}
		return sum / float64(n)
	})
}

func rolling(s Series, windowDays int, finish func(sum float64, n int) float64) Series {
	out := make(Series, 0, len(s))
	left := 0
	sum := 0.0
	n := 0
	for right := range s {
		if s[right].Defined() {
			sum += s[right].Value
			n++
		}
		// Evict points that fell out of the window's left edge.
		cutoff := s[right].Date.AddDate(0, 0, -windowDays)
		for left <= right && !s[left].Date.After(cutoff) {
			if s[left].Defined() {
				sum -= s[left].Value
				n--
			}
			left++
		}
		out = append(out, Point{Date: s[right].Date, Value: finish(sum, n)})
	}
	return out
}

func scale(s Series, factor float64) Series {
	for i := range s {
		s[i].Value *= factor
	}
	return s
}

// center shifts the series index back by half the window width. A trailing
// window assigns each aggregate to its newest day; the trend reads half a
// window late unless it is re-anchored to the window's temporal middle.
func center(s Series, windowDays int) Series {
	offset := windowDays / 2
	for i := range s {
		s[i].Date = s[i].Date.AddDate(0, 0, -offset)
	}
	return s
}
