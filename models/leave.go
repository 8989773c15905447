package models

import "time"

const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

type LeaveRequest struct {
	LeaveID   string    `json:"leaveid" bson:"leaveid"`
	UserID    string    `json:"userid" bson:"userid"`
	From      string    `json:"from" bson:"from"` // "2006-01-02", inclusive
	To        string    `json:"to" bson:"to"`     // "2006-01-02", inclusive
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Status    string    `json:"status" bson:"status"`
	DecidedBy string    `json:"decidedby,omitempty" bson:"decidedby,omitempty"`
	DecidedAt time.Time `json:"decidedat,omitempty" bson:"decidedat,omitempty"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
