package schedule

import "testing"

func TestBandWindows(t *testing.T) {
	cases := []struct {
		band       string
		start, end int
	}{
		{BandMorning, 360, 720},
		{BandAfternoon, 720, 1020},
		{BandEvening, 1020, 1320},
		{BandNight, 1320, 1800},
	}
	for _, c := range cases {
		start, end, ok := BandWindow(c.band)
		if !ok {
			t.Fatalf("BandWindow(%s) not ok", c.band)
		}
		if start != c.start || end != c.end {
			t.Errorf("BandWindow(%s) = %d,%d want %d,%d", c.band, start, end, c.start, c.end)
		}
	}

	if _, _, ok := BandWindow("brunch"); ok {
		t.Error("unknown band reported a window")
	}
}

func TestBandsCoverTheDay(t *testing.T) {
	covered := make([]bool, 1440)
	for _, b := range Bands() {
		for _, seg := range bandSegments(b) {
			for m := seg[0]; m < seg[1]; m++ {
				if covered[m] {
					t.Fatalf("minute %d covered twice", m)
				}
				covered[m] = true
			}
		}
	}
	for m, ok := range covered {
		if !ok {
			t.Fatalf("minute %d uncovered", m)
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// touching intervals do not overlap
	if Overlaps(0, 60, 60, 120) {
		t.Error("adjacent intervals reported overlapping")
	}
	if !Overlaps(0, 61, 60, 120) {
		t.Error("intersecting intervals reported disjoint")
	}
	if Overlaps(0, 0, 0, 60) {
		t.Error("empty interval reported overlapping")
	}
}

func TestBandsOverlap(t *testing.T) {
	for i, a := range Bands() {
		for j, b := range Bands() {
			got := BandsOverlap(a, b)
			want := i == j
			if got != want {
				t.Errorf("BandsOverlap(%s, %s) = %v want %v", a, b, got, want)
			}
		}
	}
}

func TestNightBandWrapsIntoMorningHours(t *testing.T) {
	segs := bandSegments(BandNight)
	if len(segs) != 2 {
		t.Fatalf("night band should split into two segments, got %d", len(segs))
	}
	// 02:00 belongs to the night band
	found := false
	for _, seg := range segs {
		if Overlaps(seg[0], seg[1], 120, 121) {
			found = true
		}
	}
	if !found {
		t.Error("02:00 not covered by the night band")
	}
}

func TestDayNames(t *testing.T) {
	if DayName(0) != "Sunday" || DayName(6) != "Saturday" {
		t.Errorf("unexpected day names: %q, %q", DayName(0), DayName(6))
	}
	if DayName(7) != "" || DayName(-1) != "" {
		t.Error("out-of-range day should yield empty name")
	}
}
