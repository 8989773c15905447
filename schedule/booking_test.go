package schedule

import (
	"testing"

	"medira/models"

	"go.mongodb.org/mongo-driver/bson"
)

// The book filter is what makes two concurrent bookings of the same
// (cell, date) impossible: the one-document conditional update only matches
// while the date is free, so at most one writer can see a match.
func TestBookFilterGuardsDateAndState(t *testing.T) {
	f := bookFilter("s1", "2026-01-05", 1)

	if f["slotid"] != "s1" || f["day"] != 1 {
		t.Fatalf("filter misses the cell identity: %v", f)
	}

	statuses, ok := f["status"].(bson.M)
	if !ok {
		t.Fatalf("filter misses the approval gate: %v", f)
	}
	in, ok := statuses["$in"].(bson.A)
	if !ok || len(in) != 2 {
		t.Fatalf("approval gate should accept exactly assigned and booked: %v", statuses)
	}

	not, ok := f["reservations"].(bson.M)["$not"].(bson.M)
	if !ok {
		t.Fatalf("filter misses the free-date guard: %v", f)
	}
	match := not["$elemMatch"].(bson.M)
	if match["date"] != "2026-01-05" {
		t.Errorf("free-date guard bound to wrong date: %v", match)
	}
	active := match["status"].(bson.M)["$in"].(bson.A)
	if len(active) != 2 || active[0] != models.ResBooked || active[1] != models.ResConfirmed {
		t.Errorf("active statuses should be booked and confirmed: %v", active)
	}
}

func TestReleaseFilterScopesOwnership(t *testing.T) {
	f := releaseFilter("s1", "2026-01-05", "p9")
	match := f["reservations"].(bson.M)["$elemMatch"].(bson.M)
	if match["patientid"] != "p9" {
		t.Errorf("owned release must carry the patient in the atomic filter: %v", match)
	}

	f = releaseFilter("s1", "2026-01-05", "")
	match = f["reservations"].(bson.M)["$elemMatch"].(bson.M)
	if _, present := match["patientid"]; present {
		t.Errorf("staff release should not be owner-scoped: %v", match)
	}
}

func TestValidOutcome(t *testing.T) {
	for _, s := range []string{models.ResCancelled, models.ResCompleted, models.ResNoShow} {
		if !validOutcome(s) {
			t.Errorf("outcome %q should be valid", s)
		}
	}
	for _, s := range []string{models.ResBooked, models.ResConfirmed, "", "done"} {
		if validOutcome(s) {
			t.Errorf("outcome %q should be invalid", s)
		}
	}
}
