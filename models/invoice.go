package models

import "time"

const (
	InvoiceIssued = "issued"
	InvoicePaid   = "paid"
	InvoiceVoid   = "void"
)

type InvoiceItem struct {
	Description string  `json:"description" bson:"description"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unit_price" bson:"unit_price"`
}

type Invoice struct {
	InvID     string        `json:"invid" bson:"invid"`
	Number    string        `json:"number" bson:"number"`
	PatientID string        `json:"patientid" bson:"patientid"`
	Items     []InvoiceItem `json:"items" bson:"items"`
	Total     float64       `json:"total" bson:"total"`
	Status    string        `json:"status" bson:"status"`
	IssuedBy  string        `json:"issuedby" bson:"issuedby"`
	PaidAt    time.Time     `json:"paidat,omitempty" bson:"paidat,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}
