package trend

import (
	"math"
	"testing"
	"time"

	"github.com/jgehrcke/runni/internal/ingest"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return DateOnly(parsed)
}

func run(t *testing.T, date string, km float64) ingest.Run {
	t.Helper()
	return ingest.Run{Date: day(t, date), Km: km}
}

func timedRun(t *testing.T, date string, km, min, sec float64) ingest.Run {
	t.Helper()
	return ingest.Run{Date: day(t, date), Km: km, Minutes: min, Seconds: sec, HasDuration: true}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregatePerDaySum(t *testing.T) {
	// Two runs on 07-11 combine additively into one day.
	runs := []ingest.Run{
		run(t, "2019-07-10", 3.2),
		run(t, "2019-07-11", 4.5),
		run(t, "2019-07-11", 5.4),
		run(t, "2019-07-17", 4.5),
	}

	res := Aggregate(runs, 14)

	tests := []struct {
		date     string
		expected float64
	}{
		{"2019-07-10", 3.2},
		{"2019-07-11", 9.9},
		{"2019-07-12", 0},
		{"2019-07-16", 0},
		{"2019-07-17", 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			v, ok := res.DailyKm.ValueAt(day(t, tt.date))
			if !ok {
				t.Fatalf("no point for %s", tt.date)
			}
			if !almostEqual(v, tt.expected) {
				t.Errorf("DailyKm[%s] = %v, want %v", tt.date, v, tt.expected)
			}
		})
	}
}

func TestRegularizationComplete(t *testing.T) {
	// Input has gaps; the regularized series must cover every calendar day
	// from the earliest to the latest date, in order, with none skipped.
	runs := []ingest.Run{
		run(t, "2019-05-27", 2.7),
		run(t, "2019-06-06", 2.9),
		run(t, "2019-06-11", 4.6),
	}

	res := Aggregate(runs, 14)

	wantLen := 16 // 05-27 through 06-11 inclusive
	if len(res.DailyKm) != wantLen {
		t.Fatalf("DailyKm has %d points, want %d", len(res.DailyKm), wantLen)
	}

	for i, p := range res.DailyKm {
		want := day(t, "2019-05-27").AddDate(0, 0, i)
		if !p.Date.Equal(want) {
			t.Errorf("point %d has date %s, want %s", i, p.Date, want)
		}
	}
}

func TestConstantSeriesWeeklyValue(t *testing.T) {
	// A 14-day window over a constant distance-per-day series of value v
	// yields v*14 summed, normalized by 14/7 to v*7 per week.
	const v = 5.0
	var runs []ingest.Run
	start := day(t, "2020-03-01")
	for i := 0; i < 28; i++ {
		runs = append(runs, ingest.Run{Date: start.AddDate(0, 0, i), Km: v})
	}

	res := Aggregate(runs, 14)

	// The unshifted full windows end on days 13..27; after centering by 7
	// days their values sit on days 6..20.
	for i := 6; i <= 20; i++ {
		date := start.AddDate(0, 0, i)
		got, ok := res.WeeklyKm.ValueAt(date)
		if !ok {
			t.Fatalf("no weekly point on day %d", i)
		}
		if !almostEqual(got, v*7) {
			t.Errorf("WeeklyKm[day %d] = %v, want %v", i, got, v*7)
		}
	}
}

func TestCenteringShift(t *testing.T) {
	tests := []struct {
		name       string
		windowDays int
		shiftDays  int
	}{
		{"default window", 14, 7},
		{"four weeks", 28, 14},
		{"odd width floors", 9, 4},
	}

	runs := []ingest.Run{
		run(t, "2020-03-01", 3),
		run(t, "2020-03-20", 4),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Aggregate(runs, tt.windowDays)
			if len(res.WeeklyKm) != len(res.DailyKm) {
				t.Fatalf("weekly has %d points, daily has %d", len(res.WeeklyKm), len(res.DailyKm))
			}
			for i := range res.WeeklyKm {
				want := res.DailyKm[i].Date.AddDate(0, 0, -tt.shiftDays)
				if !res.WeeklyKm[i].Date.Equal(want) {
					t.Fatalf("weekly point %d at %s, want %s", i, res.WeeklyKm[i].Date, want)
				}
			}
		})
	}
}

func TestTwoRunsOneDayRoundTrip(t *testing.T) {
	runs := []ingest.Run{
		run(t, "2019-07-11", 3.2),
		run(t, "2019-07-11", 4.5),
		run(t, "2019-07-15", 6.0),
	}

	res := Aggregate(runs, 14)

	v, ok := res.DailyKm.ValueAt(day(t, "2019-07-11"))
	if !ok || !almostEqual(v, 7.7) {
		t.Errorf("DailyKm[2019-07-11] = %v (ok=%v), want 7.7", v, ok)
	}

	for _, p := range res.DailyKm {
		if p.Date.Equal(day(t, "2019-07-11")) || p.Date.Equal(day(t, "2019-07-15")) {
			continue
		}
		if p.Value != 0 {
			t.Errorf("DailyKm[%s] = %v, want 0", p.Date, p.Value)
		}
	}
}

func TestPaceIsMeanOfPerRunPaces(t *testing.T) {
	// 10 km in 50 min is 5:00/km; 2 km in 14 min is 7:00/km. The day's
	// pace is their mean, 6:00/km -- not total minutes over total km,
	// which would be 64/12.
	runs := []ingest.Run{
		timedRun(t, "2021-01-05", 10, 50, 0),
		timedRun(t, "2021-01-05", 2, 14, 0),
	}

	res := Aggregate(runs, 14)

	got, ok := res.DailyPace.ValueAt(day(t, "2021-01-05"))
	if !ok {
		t.Fatal("no pace point for run day")
	}
	if !almostEqual(got, 6.0) {
		t.Errorf("DailyPace = %v, want 6.0 (mean of ratios)", got)
	}
	if almostEqual(got, 64.0/12.0) {
		t.Error("DailyPace is the ratio of sums; it must be the mean of per-run paces")
	}
}

func TestPaceGapsAreNaN(t *testing.T) {
	runs := []ingest.Run{
		timedRun(t, "2021-01-05", 5, 25, 0),
		timedRun(t, "2021-01-08", 5, 30, 0),
	}

	res := Aggregate(runs, 14)

	for _, tt := range []struct {
		date    string
		defined bool
	}{
		{"2021-01-05", true},
		{"2021-01-06", false},
		{"2021-01-07", false},
		{"2021-01-08", true},
	} {
		v, ok := res.DailyPace.ValueAt(day(t, tt.date))
		if !ok {
			t.Fatalf("no pace point for %s", tt.date)
		}
		if defined := !math.IsNaN(v); defined != tt.defined {
			t.Errorf("DailyPace[%s] defined = %v, want %v", tt.date, defined, tt.defined)
		}
		// Distance on a day without a run is zero, not NaN.
		km, _ := res.DailyKm.ValueAt(day(t, tt.date))
		if math.IsNaN(km) {
			t.Errorf("DailyKm[%s] is NaN", tt.date)
		}
	}
}

func TestWeeklyPaceSkipsGaps(t *testing.T) {
	// Two run days inside one window: the rolling pace is the mean of the
	// two defined days, with the NaN gap days excluded from the count.
	runs := []ingest.Run{
		timedRun(t, "2021-01-05", 5, 25, 0), // 5:00/km
		timedRun(t, "2021-01-08", 5, 35, 0), // 7:00/km
	}

	res := Aggregate(runs, 14)

	// Unshifted window ending on the last day holds both run days; after
	// centering its value sits 7 days earlier.
	got, ok := res.WeeklyPace.ValueAt(day(t, "2021-01-01"))
	if !ok {
		t.Fatal("no weekly pace point at the centered window position")
	}
	if !almostEqual(got, 6.0) {
		t.Errorf("WeeklyPace = %v, want 6.0", got)
	}
}

func TestRollingSumWindowSpan(t *testing.T) {
	// 1 km every day, 7-day window: every full window sums to 7, divided
	// by 7/7 stays 7 km/week.
	var runs []ingest.Run
	start := day(t, "2020-06-01")
	for i := 0; i < 14; i++ {
		runs = append(runs, ingest.Run{Date: start.AddDate(0, 0, i), Km: 1})
	}

	res := Aggregate(runs, 7)

	// First full window ends on day 6, centered back 3 days to day 3.
	for i := 3; i <= 10; i++ {
		got, ok := res.WeeklyKm.ValueAt(start.AddDate(0, 0, i))
		if !ok {
			t.Fatalf("no weekly point on day %d", i)
		}
		if !almostEqual(got, 7) {
			t.Errorf("WeeklyKm[day %d] = %v, want 7", i, got)
		}
	}

	// The partial leading window on day 0 (centered to day -3) covers one
	// day only: 1 km / (7/7).
	got, ok := res.WeeklyKm.ValueAt(start.AddDate(0, 0, -3))
	if !ok {
		t.Fatal("no weekly point for the first window position")
	}
	if !almostEqual(got, 1) {
		t.Errorf("leading partial window = %v, want 1", got)
	}
}

func TestEmptyInput(t *testing.T) {
	res := Aggregate(nil, 14)

	if !res.Empty() {
		t.Error("Aggregate(nil) is not empty")
	}
	for name, s := range map[string]Series{
		"DailyKm": res.DailyKm, "WeeklyKm": res.WeeklyKm,
		"DailyHours": res.DailyHours, "WeeklyHours": res.WeeklyHours,
		"DailyPace": res.DailyPace, "WeeklyPace": res.WeeklyPace,
	} {
		if len(s) != 0 {
			t.Errorf("%s has %d points, want 0", name, len(s))
		}
	}
	if res.WindowDays != 14 {
		t.Errorf("WindowDays = %d, want 14", res.WindowDays)
	}
}

func TestHasDuration(t *testing.T) {
	withoutDuration := Aggregate([]ingest.Run{run(t, "2021-01-05", 5)}, 14)
	if withoutDuration.HasDuration {
		t.Error("HasDuration = true for distance-only input")
	}

	withDuration := Aggregate([]ingest.Run{timedRun(t, "2021-01-05", 5, 25, 0)}, 14)
	if !withDuration.HasDuration {
		t.Error("HasDuration = false for timed input")
	}
}
