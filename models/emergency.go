package models

import "time"

// EmergencyGrant is a time-limited permission for one clinician to read one
// patient's record. Expiry is evaluated at read time, never by a timer.
type EmergencyGrant struct {
	GrantID   string    `json:"grantid" bson:"grantid"`
	PatientID string    `json:"patientid" bson:"patientid"`
	GranteeID string    `json:"granteeid" bson:"granteeid"`
	GrantedBy string    `json:"grantedby" bson:"grantedby"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	ExpiresAt time.Time `json:"expiresat" bson:"expiresat"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// EmergencyAccess is one audit row per read attempt, allowed or not.
type EmergencyAccess struct {
	AccessID  string    `json:"accessid" bson:"accessid"`
	PatientID string    `json:"patientid" bson:"patientid"`
	GranteeID string    `json:"granteeid" bson:"granteeid"`
	Allowed   bool      `json:"allowed" bson:"allowed"`
	At        time.Time `json:"at" bson:"at"`
}
