package schedule

import (
	"context"
	"time"

	"medira/db"
	"medira/models"
	"medira/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func genID() string {
	return utils.GenerateRandomDigitString(16)
}

// RequestAssignment creates or claims the weekly cell for (day, band). The
// cell is created lazily on the first request; the unique (day, band) index
// plus the $setOnInsert upsert make concurrent first requests collapse into
// one cell. A granted request leaves the cell awaiting admin approval:
// a set practitioner does not mean approved.
func RequestAssignment(ctx context.Context, day int, band, doctorID, notes string) (*models.SlotCell, error) {
	if !ValidDay(day) {
		return nil, errValidation("day must be between 0 and 6, got %d", day)
	}
	if !ValidBand(band) {
		return nil, errValidation("unknown time band %q", band)
	}
	if doctorID == "" {
		return nil, errValidation("practitioner id is required")
	}

	now := time.Now()
	fresh := models.SlotCell{
		SlotID:       genID(),
		Day:          day,
		Band:         band,
		DoctorID:     doctorID,
		Status:       models.SlotAwaitingApproval,
		Notes:        notes,
		Reservations: []models.Reservation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := db.SlotCollection.UpdateOne(ctx,
		bson.M{"day": day, "band": band},
		bson.M{"$setOnInsert": fresh},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	if res.UpsertedCount == 1 {
		return &fresh, nil
	}

	cell, err := findByKey(ctx, day, band)
	if err != nil {
		return nil, err
	}

	switch {
	case cell.Status == models.SlotAwaitingApproval && cell.DoctorID == doctorID:
		return nil, errDuplicate("an identical request for %s %s is already awaiting approval", DayName(day), band)
	case cell.Status == models.SlotAwaitingApproval:
		return nil, errConflict("another practitioner's request for %s %s is awaiting approval", DayName(day), band)
	case cellAcceptsBookings(cell.Status) && cell.DoctorID != doctorID:
		return nil, errConflict("%s %s is already assigned to another practitioner", DayName(day), band)
	case cellAcceptsBookings(cell.Status):
		return nil, errPrecondition("%s %s is already assigned to you", DayName(day), band)
	}

	// Cell exists but is unassigned: claim it. The status filter keeps two
	// concurrent claims from both succeeding.
	upd, err := db.SlotCollection.UpdateOne(ctx,
		bson.M{"slotid": cell.SlotID, "status": models.SlotUnassigned},
		bson.M{"$set": bson.M{
			"doctorid":   doctorID,
			"status":     models.SlotAwaitingApproval,
			"notes":      notes,
			"updated_at": now,
		}},
	)
	if err != nil {
		return nil, err
	}
	if upd.ModifiedCount == 0 {
		return nil, errConflict("%s %s was claimed concurrently", DayName(day), band)
	}

	return GetCell(ctx, cell.SlotID)
}

// Approve moves an awaiting cell to assigned, stamping the approver.
func Approve(ctx context.Context, slotID, approverID string) (*models.SlotCell, error) {
	cell, err := GetCell(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if cell.DoctorID == "" {
		return nil, errPrecondition("no practitioner has requested this slot")
	}
	if cellAcceptsBookings(cell.Status) {
		return nil, errPrecondition("slot is already approved")
	}
	if !canTransition(cell.Status, ActionApprove) {
		return nil, errPrecondition("slot in state %q cannot be approved", cell.Status)
	}

	upd, err := db.SlotCollection.UpdateOne(ctx,
		bson.M{"slotid": slotID, "status": models.SlotAwaitingApproval},
		bson.M{"$set": bson.M{
			"status":     models.SlotAssigned,
			"approvedby": approverID,
			"approvedat": time.Now(),
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}
	if upd.ModifiedCount == 0 {
		return nil, errConflict("slot changed concurrently, approve again")
	}
	return GetCell(ctx, slotID)
}

// Reject returns an awaiting cell to unassigned and records the reason.
func Reject(ctx context.Context, slotID, reason string) (*models.SlotCell, error) {
	cell, err := GetCell(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if cell.DoctorID == "" {
		return nil, errPrecondition("no practitioner has requested this slot")
	}
	if !canTransition(cell.Status, ActionReject) {
		return nil, errPrecondition("slot in state %q cannot be rejected", cell.Status)
	}

	upd, err := db.SlotCollection.UpdateOne(ctx,
		bson.M{"slotid": slotID, "status": models.SlotAwaitingApproval},
		bson.M{
			"$set": bson.M{
				"status":     models.SlotUnassigned,
				"notes":      reason,
				"updated_at": time.Now(),
			},
			"$unset": bson.M{"doctorid": "", "approvedby": "", "approvedat": ""},
		},
	)
	if err != nil {
		return nil, err
	}
	if upd.ModifiedCount == 0 {
		return nil, errConflict("slot changed concurrently, reject again")
	}
	return GetCell(ctx, slotID)
}

// Revoke takes an assigned cell away from its practitioner. Cells with
// active bookings cannot be revoked; release the bookings first.
func Revoke(ctx context.Context, slotID string) (*models.SlotCell, error) {
	cell, err := GetCell(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !canTransition(cell.Status, ActionRevoke) {
		return nil, errPrecondition("slot in state %q cannot be revoked", cell.Status)
	}
	if HasActiveReservations(cell) {
		return nil, errPrecondition("slot still has active bookings")
	}

	upd, err := db.SlotCollection.UpdateOne(ctx,
		bson.M{
			"slotid":       slotID,
			"status":       bson.M{"$in": bson.A{models.SlotAssigned, models.SlotBooked}},
			"reservations": bson.M{"$not": activeReservationMatch("")},
		},
		bson.M{
			"$set":   bson.M{"status": models.SlotUnassigned, "updated_at": time.Now()},
			"$unset": bson.M{"doctorid": "", "approvedby": "", "approvedat": ""},
		},
	)
	if err != nil {
		return nil, err
	}
	if upd.ModifiedCount == 0 {
		return nil, errConflict("slot changed concurrently, revoke again")
	}
	return GetCell(ctx, slotID)
}

func GetCell(ctx context.Context, slotID string) (*models.SlotCell, error) {
	var cell models.SlotCell
	err := db.SlotCollection.FindOne(ctx, bson.M{"slotid": slotID}).Decode(&cell)
	if err == mongo.ErrNoDocuments {
		return nil, errNotFound("slot %s not found", slotID)
	}
	if err != nil {
		return nil, err
	}
	return &cell, nil
}

func findByKey(ctx context.Context, day int, band string) (*models.SlotCell, error) {
	var cell models.SlotCell
	err := db.SlotCollection.FindOne(ctx, bson.M{"day": day, "band": band}).Decode(&cell)
	if err == mongo.ErrNoDocuments {
		return nil, errNotFound("no slot for %s %s", DayName(day), band)
	}
	if err != nil {
		return nil, err
	}
	return &cell, nil
}

// ListForAdmin returns every cell ordered by day and band.
func ListForAdmin(ctx context.Context) ([]models.SlotCell, error) {
	return listCells(ctx, bson.M{})
}

// ListForDay returns all cells of one weekday.
func ListForDay(ctx context.Context, day int) ([]models.SlotCell, error) {
	if !ValidDay(day) {
		return nil, errValidation("day must be between 0 and 6, got %d", day)
	}
	return listCells(ctx, bson.M{"day": day})
}

// ListForStatus backs the approval dashboard, e.g. all awaiting_approval cells.
func ListForStatus(ctx context.Context, status string) ([]models.SlotCell, error) {
	switch status {
	case models.SlotUnassigned, models.SlotAwaitingApproval, models.SlotAssigned, models.SlotBooked:
		return listCells(ctx, bson.M{"status": status})
	}
	return nil, errValidation("unknown slot status %q", status)
}

func listCells(ctx context.Context, filter bson.M) ([]models.SlotCell, error) {
	cur, err := db.SlotCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "band", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cells []models.SlotCell
	for cur.Next(ctx) {
		var c models.SlotCell
		if err := cur.Decode(&c); err != nil {
			continue
		}
		cells = append(cells, c)
	}
	return cells, cur.Err()
}

// ListAssignedForPatients is the patient projection: approved cells with at
// least one free date inside the window.
func ListAssignedForPatients(ctx context.Context, from, to time.Time) ([]models.SlotAvailability, error) {
	cur, err := db.SlotCollection.Find(ctx, bson.M{
		"status": bson.M{"$in": bson.A{models.SlotAssigned, models.SlotBooked}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SlotAvailability
	for cur.Next(ctx) {
		var c models.SlotCell
		if err := cur.Decode(&c); err != nil {
			continue
		}
		dates := AvailableDates(&c, from, to)
		if len(dates) == 0 {
			continue
		}
		out = append(out, models.SlotAvailability{Slot: c, AvailableDates: dates})
	}
	return out, cur.Err()
}
