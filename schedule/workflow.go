package schedule

import "medira/models"

// Workflow actions on a slot cell. Every mutation validates the current
// state first; an illegal pairing is a precondition error, never a silent
// no-op.
const (
	ActionRequest = "request"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionRevoke  = "revoke"
	ActionBook    = "book"
)

// canTransition is the state machine:
//
//	unassigned -request-> awaiting_approval -approve-> assigned -book-> booked
//	awaiting_approval -reject-> unassigned
//	assigned/booked -revoke-> unassigned (only without active bookings;
//	the reservation guard lives in Revoke, not here)
func canTransition(status, action string) bool {
	switch action {
	case ActionRequest:
		return status == models.SlotUnassigned
	case ActionApprove, ActionReject:
		return status == models.SlotAwaitingApproval
	case ActionRevoke:
		return status == models.SlotAssigned || status == models.SlotBooked
	case ActionBook:
		return cellAcceptsBookings(status)
	}
	return false
}
