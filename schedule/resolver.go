package schedule

import (
	"time"

	"medira/models"
)

const dateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func activeStatus(s string) bool {
	return s == models.ResBooked || s == models.ResConfirmed
}

func cellAcceptsBookings(status string) bool {
	return status == models.SlotAssigned || status == models.SlotBooked
}

// activeOnDate reports whether the cell already holds a blocking reservation
// for the given date (day granularity).
func activeOnDate(cell *models.SlotCell, date string) bool {
	for _, r := range cell.Reservations {
		if r.Date == date && activeStatus(r.Status) {
			return true
		}
	}
	return false
}

// HasActiveReservations reports whether any date of the cell is still blocked.
func HasActiveReservations(cell *models.SlotCell) bool {
	for _, r := range cell.Reservations {
		if activeStatus(r.Status) {
			return true
		}
	}
	return false
}

// IsDateAvailable is pure calendar logic: the cell must be approved, the date
// must fall on the cell's weekday, and no active reservation may block it.
// Past dates are not excluded here; booking entry points reject those.
func IsDateAvailable(cell *models.SlotCell, date time.Time) bool {
	if !cellAcceptsBookings(cell.Status) {
		return false
	}
	if int(date.Weekday()) != cell.Day {
		return false
	}
	return !activeOnDate(cell, date.Format(dateLayout))
}

// AvailableDates walks [from, to] day by day and collects the dates on the
// cell's weekday that IsDateAvailable accepts. Windows are caller-bounded
// (typically 14-60 days), so the linear walk is fine.
func AvailableDates(cell *models.SlotCell, from, to time.Time) []string {
	from = truncateToDay(from)
	to = truncateToDay(to)

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if int(d.Weekday()) != cell.Day {
			continue
		}
		if IsDateAvailable(cell, d) {
			dates = append(dates, d.Format(dateLayout))
		}
	}
	return dates
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
