package schedule

import (
	"context"
	"time"

	"medira/db"
	"medira/models"

	"go.mongodb.org/mongo-driver/bson"
)

// activeReservationMatch builds the $elemMatch clause selecting a blocking
// reservation. Empty date or patient means "any".
func activeReservationMatch(date string) bson.M {
	m := bson.M{"status": bson.M{"$in": bson.A{models.ResBooked, models.ResConfirmed}}}
	if date != "" {
		m["date"] = date
	}
	return bson.M{"$elemMatch": m}
}

// bookFilter is the atomicity carrier: the update below only matches a cell
// that is approved, held on the requested weekday, and free on the requested
// date. Two concurrent bookings of the same (cell, date) can therefore never
// both match; the loser sees ModifiedCount zero.
func bookFilter(slotID, date string, weekday int) bson.M {
	return bson.M{
		"slotid":       slotID,
		"day":          weekday,
		"status":       bson.M{"$in": bson.A{models.SlotAssigned, models.SlotBooked}},
		"reservations": bson.M{"$not": activeReservationMatch(date)},
	}
}

func releaseFilter(slotID, date, patientID string) bson.M {
	match := bson.M{
		"date":   date,
		"status": bson.M{"$in": bson.A{models.ResBooked, models.ResConfirmed}},
	}
	if patientID != "" {
		match["patientid"] = patientID
	}
	return bson.M{
		"slotid":       slotID,
		"reservations": bson.M{"$elemMatch": match},
	}
}

func validOutcome(s string) bool {
	return s == models.ResCancelled || s == models.ResCompleted || s == models.ResNoShow
}

// BookDate appends a reservation for one concrete date in a single
// conditional write. On a miss it re-reads the cell to classify the failure.
func BookDate(ctx context.Context, slotID, date, patientID, reason string) (*models.Reservation, error) {
	if patientID == "" {
		return nil, errValidation("patient id is required")
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, errValidation("invalid date %q, want YYYY-MM-DD", date)
	}

	now := time.Now()
	res := models.Reservation{
		ResID:     genID(),
		Date:      date,
		PatientID: patientID,
		Status:    models.ResBooked,
		Reason:    reason,
		CreatedAt: now,
	}

	upd, err := db.SlotCollection.UpdateOne(ctx,
		bookFilter(slotID, date, int(day.Weekday())),
		bson.M{
			"$push": bson.M{"reservations": res},
			"$set":  bson.M{"status": models.SlotBooked, "updated_at": now},
		},
	)
	if err != nil {
		return nil, err
	}
	if upd.ModifiedCount == 1 {
		broadcastSlotUpdate(slotID)
		return &res, nil
	}

	return nil, classifyBookFailure(ctx, slotID, date, int(day.Weekday()))
}

func classifyBookFailure(ctx context.Context, slotID, date string, weekday int) error {
	cell, err := GetCell(ctx, slotID)
	if err != nil {
		return err
	}
	switch {
	case cell.Day != weekday:
		return errValidation("%s does not fall on %s", date, DayName(cell.Day))
	case !canTransition(cell.Status, ActionBook):
		return errPrecondition("slot is not approved for booking")
	case activeOnDate(cell, date):
		return errConflict("date %s is not available", date)
	default:
		return errConflict("booking failed, try again")
	}
}

// ReleaseDate ends the active reservation for a date, keeping the record
// with its new status. If nothing active remains the cell's display state
// drops back to assigned.
func ReleaseDate(ctx context.Context, slotID, date, outcome string) (*models.SlotCell, error) {
	return release(ctx, slotID, date, "", outcome)
}

// ReleaseOwnedDate is ReleaseDate restricted to the reservation owner; the
// ownership check rides in the same atomic filter.
func ReleaseOwnedDate(ctx context.Context, slotID, date, patientID, outcome string) (*models.SlotCell, error) {
	if patientID == "" {
		return nil, errValidation("patient id is required")
	}
	return release(ctx, slotID, date, patientID, outcome)
}

func release(ctx context.Context, slotID, date, patientID, outcome string) (*models.SlotCell, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, errValidation("invalid date %q, want YYYY-MM-DD", date)
	}
	if !validOutcome(outcome) {
		return nil, errValidation("outcome must be cancelled, completed or no-show")
	}

	upd, err := db.SlotCollection.UpdateOne(ctx,
		releaseFilter(slotID, date, patientID),
		bson.M{"$set": bson.M{
			"reservations.$.status": outcome,
			"updated_at":            time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}
	if upd.ModifiedCount == 0 {
		if _, err := GetCell(ctx, slotID); err != nil {
			return nil, err
		}
		return nil, errNotFound("no active reservation for %s", date)
	}

	// Demote the derived display state once nothing active remains. Losing
	// this race only leaves a stale display flag; availability is always
	// recomputed per date.
	_, err = db.SlotCollection.UpdateOne(ctx,
		bson.M{
			"slotid":       slotID,
			"status":       models.SlotBooked,
			"reservations": bson.M{"$not": activeReservationMatch("")},
		},
		bson.M{"$set": bson.M{"status": models.SlotAssigned}},
	)
	if err != nil {
		return nil, err
	}

	broadcastSlotUpdate(slotID)
	return GetCell(ctx, slotID)
}
