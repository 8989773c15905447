package invoices

import (
	"strings"
	"testing"

	"medira/models"
)

func TestComputeTotal(t *testing.T) {
	items := []models.InvoiceItem{
		{Description: "Consultation", Quantity: 1, UnitPrice: 150},
		{Description: "Blood panel", Quantity: 2, UnitPrice: 42.5},
	}
	if got := ComputeTotal(items); got != 235 {
		t.Fatalf("ComputeTotal = %v, want 235", got)
	}
}

func TestComputeTotalEmpty(t *testing.T) {
	if got := ComputeTotal(nil); got != 0 {
		t.Fatalf("ComputeTotal(nil) = %v, want 0", got)
	}
}

func TestComputeTotalRoundsToCents(t *testing.T) {
	items := []models.InvoiceItem{
		{Description: "Tablets", Quantity: 3, UnitPrice: 0.1},
	}
	if got := ComputeTotal(items); got != 0.3 {
		t.Fatalf("ComputeTotal = %v, want 0.3", got)
	}
}

func TestSignInvoicePayloadShape(t *testing.T) {
	payload := SignInvoicePayload("inv123", "N-42", 99.5)
	parts := strings.Split(payload, "|")
	if len(parts) != 5 {
		t.Fatalf("payload has %d segments, want 5: %q", len(parts), payload)
	}
	if parts[0] != "inv123" || parts[1] != "N-42" || parts[2] != "99.50" {
		t.Fatalf("unexpected payload prefix: %q", payload)
	}
	if parts[4] == "" {
		t.Fatal("payload missing signature")
	}
}
