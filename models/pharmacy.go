package models

import "time"

type Medicine struct {
	MedID        string    `json:"medid" bson:"medid"`
	Name         string    `json:"name" bson:"name"`
	GenericName  string    `json:"generic_name,omitempty" bson:"generic_name,omitempty"`
	Form         string    `json:"form,omitempty" bson:"form,omitempty"` // tablet, syrup, injection...
	Unit         string    `json:"unit,omitempty" bson:"unit,omitempty"`
	Stock        int       `json:"stock" bson:"stock"`
	ReorderLevel int       `json:"reorder_level" bson:"reorder_level"`
	Price        float64   `json:"price" bson:"price"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

const (
	PrescriptionIssued    = "issued"
	PrescriptionDispensed = "dispensed"
	PrescriptionCancelled = "cancelled"
)

type PrescriptionItem struct {
	MedicineID string `json:"medicineid" bson:"medicineid"`
	Name       string `json:"name" bson:"name"`
	Dosage     string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	Quantity   int    `json:"quantity" bson:"quantity"`
}

type Prescription struct {
	PresID      string             `json:"presid" bson:"presid"`
	Number      string             `json:"number" bson:"number"`
	PatientID   string             `json:"patientid" bson:"patientid"`
	DoctorID    string             `json:"doctorid" bson:"doctorid"`
	Items       []PrescriptionItem `json:"items" bson:"items"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Status      string             `json:"status" bson:"status"`
	DispensedBy string             `json:"dispensedby,omitempty" bson:"dispensedby,omitempty"`
	DispensedAt time.Time          `json:"dispensedat,omitempty" bson:"dispensedat,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
