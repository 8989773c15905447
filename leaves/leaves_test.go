package leaves

import "testing"

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                   string
		aFrom, aTo, bFrom, bTo string
		want                   bool
	}{
		{"identical", "2026-03-02", "2026-03-06", "2026-03-02", "2026-03-06", true},
		{"partial", "2026-03-02", "2026-03-06", "2026-03-05", "2026-03-10", true},
		{"contained", "2026-03-01", "2026-03-31", "2026-03-10", "2026-03-12", true},
		{"shared endpoint", "2026-03-02", "2026-03-06", "2026-03-06", "2026-03-08", true},
		{"adjacent days", "2026-03-02", "2026-03-06", "2026-03-07", "2026-03-09", false},
		{"disjoint", "2026-03-02", "2026-03-06", "2026-04-01", "2026-04-05", false},
		{"single day overlap", "2026-03-05", "2026-03-05", "2026-03-05", "2026-03-05", true},
		{"month boundary", "2026-02-27", "2026-03-01", "2026-03-01", "2026-03-03", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RangesOverlap(tc.aFrom, tc.aTo, tc.bFrom, tc.bTo); got != tc.want {
				t.Fatalf("RangesOverlap(%s..%s, %s..%s) = %v, want %v",
					tc.aFrom, tc.aTo, tc.bFrom, tc.bTo, got, tc.want)
			}
			// overlap is symmetric
			if got := RangesOverlap(tc.bFrom, tc.bTo, tc.aFrom, tc.aTo); got != tc.want {
				t.Fatalf("RangesOverlap not symmetric for %s", tc.name)
			}
		})
	}
}
