package models

import "time"

// Slot cell lifecycle states. Booked is derived display state: assigned plus
// at least one active reservation.
const (
	SlotUnassigned       = "unassigned"
	SlotAwaitingApproval = "awaiting_approval"
	SlotAssigned         = "assigned"
	SlotBooked           = "booked"
)

// Reservation statuses. Booked and confirmed count as active and block the
// date; the rest keep the record for audit only.
const (
	ResBooked    = "booked"
	ResConfirmed = "confirmed"
	ResCompleted = "completed"
	ResCancelled = "cancelled"
	ResNoShow    = "no-show"
)

// Reservation is one concrete calendar date booked against a slot cell.
// Records are never deleted; cancellation and completion only flip Status.
type Reservation struct {
	ResID     string    `json:"resid" bson:"resid"`
	Date      string    `json:"date" bson:"date"` // "2006-01-02", must fall on the cell's weekday
	PatientID string    `json:"patientid" bson:"patientid"`
	Status    string    `json:"status" bson:"status"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SlotCell is a recurring weekly (weekday, time band) booking opportunity.
// (Day, Band) is the natural key; a unique index enforces one cell per pair.
type SlotCell struct {
	SlotID       string        `json:"slotid" bson:"slotid"`
	Day          int           `json:"day" bson:"day"`   // 0=Sunday .. 6=Saturday
	Band         string        `json:"band" bson:"band"` // morning|afternoon|evening|night
	DoctorID     string        `json:"doctorid,omitempty" bson:"doctorid,omitempty"`
	Status       string        `json:"status" bson:"status"`
	ApprovedBy   string        `json:"approvedby,omitempty" bson:"approvedby,omitempty"`
	ApprovedAt   time.Time     `json:"approvedat,omitempty" bson:"approvedat,omitempty"`
	Notes        string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Reservations []Reservation `json:"reservations" bson:"reservations"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// SlotAvailability pairs a cell with its free dates inside a query window.
type SlotAvailability struct {
	Slot           SlotCell `json:"slot"`
	AvailableDates []string `json:"availableDates"`
}

// AppointmentView is the patient/doctor-facing projection of one reservation.
type AppointmentView struct {
	SlotID    string    `json:"slotid" bson:"slotid"`
	Day       int       `json:"day" bson:"day"`
	Band      string    `json:"band" bson:"band"`
	DoctorID  string    `json:"doctorid" bson:"doctorid"`
	ResID     string    `json:"resid" bson:"resid"`
	Date      string    `json:"date" bson:"date"`
	PatientID string    `json:"patientid" bson:"patientid"`
	Status    string    `json:"status" bson:"status"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
