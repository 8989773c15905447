package schedule

// The bookable day is partitioned into four fixed bands. Night wraps past
// midnight, so its window runs beyond 24h when expressed in minutes.
const (
	BandMorning   = "morning"   // 06:00-12:00
	BandAfternoon = "afternoon" // 12:00-17:00
	BandEvening   = "evening"   // 17:00-22:00
	BandNight     = "night"     // 22:00-06:00, overnight
)

// minutes since midnight, half-open [start, end)
var bandWindows = map[string][2]int{
	BandMorning:   {360, 720},
	BandAfternoon: {720, 1020},
	BandEvening:   {1020, 1320},
	BandNight:     {1320, 1800}, // 22:00 next-day 06:00
}

var bandOrder = []string{BandMorning, BandAfternoon, BandEvening, BandNight}

var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Bands returns the fixed band set in display order.
func Bands() []string {
	out := make([]string, len(bandOrder))
	copy(out, bandOrder)
	return out
}

func ValidBand(band string) bool {
	_, ok := bandWindows[band]
	return ok
}

func ValidDay(day int) bool {
	return day >= 0 && day <= 6
}

func DayName(day int) string {
	if !ValidDay(day) {
		return ""
	}
	return dayNames[day]
}

// BandWindow returns the band's [start, end) in minutes since midnight.
// For the night band end exceeds 1440.
func BandWindow(band string) (start, end int, ok bool) {
	w, ok := bandWindows[band]
	if !ok {
		return 0, 0, false
	}
	return w[0], w[1], true
}

// bandSegments splits a band into same-day half-open segments so that the
// overnight band compares correctly against morning hours.
func bandSegments(band string) [][2]int {
	w, ok := bandWindows[band]
	if !ok {
		return nil
	}
	if w[1] <= 1440 {
		return [][2]int{w}
	}
	return [][2]int{{w[0], 1440}, {0, w[1] - 1440}}
}

// Overlaps reports whether two half-open minute intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// BandsOverlap reports whether two bands share any minute of the day.
func BandsOverlap(a, b string) bool {
	for _, sa := range bandSegments(a) {
		for _, sb := range bandSegments(b) {
			if Overlaps(sa[0], sa[1], sb[0], sb[1]) {
				return true
			}
		}
	}
	return false
}
