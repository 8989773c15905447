package schedule

import (
	"testing"

	"medira/models"
)

func TestTransitionMatrix(t *testing.T) {
	states := []string{
		models.SlotUnassigned,
		models.SlotAwaitingApproval,
		models.SlotAssigned,
		models.SlotBooked,
	}
	allowed := map[string][]string{
		ActionRequest: {models.SlotUnassigned},
		ActionApprove: {models.SlotAwaitingApproval},
		ActionReject:  {models.SlotAwaitingApproval},
		ActionRevoke:  {models.SlotAssigned, models.SlotBooked},
		ActionBook:    {models.SlotAssigned, models.SlotBooked},
	}

	for action, okStates := range allowed {
		okSet := map[string]bool{}
		for _, s := range okStates {
			okSet[s] = true
		}
		for _, state := range states {
			got := canTransition(state, action)
			if got != okSet[state] {
				t.Errorf("canTransition(%s, %s) = %v want %v", state, action, got, okSet[state])
			}
		}
	}
}

func TestUnknownActionNeverAllowed(t *testing.T) {
	if canTransition(models.SlotAssigned, "promote") {
		t.Error("unknown action should not be allowed")
	}
}
