package schedule

import (
	"testing"
	"time"

	"medira/models"
)

// 2026-01-05 is a Monday.
func monday(week int) time.Time {
	return time.Date(2026, 1, 5+7*week, 0, 0, 0, 0, time.UTC)
}

func mondayCell(status string, reservations ...models.Reservation) *models.SlotCell {
	return &models.SlotCell{
		SlotID:       "s1",
		Day:          1,
		Band:         BandMorning,
		DoctorID:     "d1",
		Status:       status,
		Reservations: reservations,
	}
}

func TestIsDateAvailableRequiresApproval(t *testing.T) {
	for _, status := range []string{models.SlotUnassigned, models.SlotAwaitingApproval} {
		if IsDateAvailable(mondayCell(status), monday(0)) {
			t.Errorf("cell in state %q should not be bookable", status)
		}
	}
	if !IsDateAvailable(mondayCell(models.SlotAssigned), monday(0)) {
		t.Error("assigned cell with no reservations should be bookable")
	}
	if !IsDateAvailable(mondayCell(models.SlotBooked), monday(0)) {
		t.Error("booked cell still accepts other dates")
	}
}

func TestIsDateAvailableWeekdayMismatch(t *testing.T) {
	tuesday := monday(0).AddDate(0, 0, 1)
	if IsDateAvailable(mondayCell(models.SlotAssigned), tuesday) {
		t.Error("date off the cell's weekday should not be available")
	}
}

func TestActiveReservationBlocksOnlyItsDate(t *testing.T) {
	first := monday(0).Format("2006-01-02")
	cell := mondayCell(models.SlotBooked, models.Reservation{
		Date: first, PatientID: "p1", Status: models.ResBooked,
	})

	if IsDateAvailable(cell, monday(0)) {
		t.Error("actively booked date reported available")
	}
	if !IsDateAvailable(cell, monday(1)) {
		t.Error("following week should still be available")
	}
}

func TestReleasedReservationFreesDateButPersists(t *testing.T) {
	first := monday(0).Format("2006-01-02")
	cell := mondayCell(models.SlotAssigned, models.Reservation{
		Date: first, PatientID: "p1", Status: models.ResCancelled,
	})

	if !IsDateAvailable(cell, monday(0)) {
		t.Error("cancelled reservation should not block the date")
	}
	if len(cell.Reservations) != 1 {
		t.Error("reservation record must persist after release")
	}

	cell.Reservations[0].Status = models.ResCompleted
	if !IsDateAvailable(cell, monday(0)) {
		t.Error("completed reservation should not block the date")
	}
}

func TestAvailableDatesMatchingWeekdaysMinusBooked(t *testing.T) {
	booked := monday(1).Format("2006-01-02")
	cell := mondayCell(models.SlotAssigned, models.Reservation{
		Date: booked, PatientID: "p1", Status: models.ResConfirmed,
	})

	// four Mondays in the window, one actively booked
	from := monday(0)
	to := monday(3)
	dates := AvailableDates(cell, from, to)
	if len(dates) != 3 {
		t.Fatalf("want 3 available dates, got %d: %v", len(dates), dates)
	}
	for _, s := range dates {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("bad date %q: %v", s, err)
		}
		if d.Weekday() != time.Monday {
			t.Errorf("%s is not a Monday", s)
		}
		if s == booked {
			t.Errorf("booked date %s still enumerated", s)
		}
	}
}

func TestAvailableDatesEmptyForUnapprovedCell(t *testing.T) {
	cell := mondayCell(models.SlotAwaitingApproval)
	if dates := AvailableDates(cell, monday(0), monday(3)); len(dates) != 0 {
		t.Errorf("unapproved cell yielded dates: %v", dates)
	}
}

func TestAvailableDatesRestartable(t *testing.T) {
	cell := mondayCell(models.SlotAssigned)
	a := AvailableDates(cell, monday(0), monday(2))
	b := AvailableDates(cell, monday(0), monday(2))
	if len(a) != len(b) {
		t.Fatalf("enumeration not stable: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("enumeration not stable at %d: %v vs %v", i, a, b)
		}
	}
}

func TestHasActiveReservations(t *testing.T) {
	cell := mondayCell(models.SlotAssigned,
		models.Reservation{Date: "2026-01-05", Status: models.ResCancelled},
		models.Reservation{Date: "2026-01-12", Status: models.ResCompleted},
	)
	if HasActiveReservations(cell) {
		t.Error("only settled reservations, none should count as active")
	}
	cell.Reservations = append(cell.Reservations,
		models.Reservation{Date: "2026-01-19", Status: models.ResBooked})
	if !HasActiveReservations(cell) {
		t.Error("booked reservation should count as active")
	}
}
