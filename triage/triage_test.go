package triage

import "testing"

func TestSpecialityFor(t *testing.T) {
	cases := []struct {
		symptom string
		want    string
	}{
		{"chest pain", "cardiology"},
		{"Chest Pain", "cardiology"},
		{"  headache  ", "neurology"},
		{"rash", "dermatology"},
		{"fever", "general medicine"},
		{"sudden hair loss", DefaultSpeciality},
		{"", DefaultSpeciality},
	}
	for _, tc := range cases {
		if got := SpecialityFor(tc.symptom); got != tc.want {
			t.Errorf("SpecialityFor(%q) = %q, want %q", tc.symptom, got, tc.want)
		}
	}
}

func TestSymptomsCoversTable(t *testing.T) {
	syms := Symptoms()
	if len(syms) != len(symptomSpeciality) {
		t.Fatalf("Symptoms() returned %d entries, want %d", len(syms), len(symptomSpeciality))
	}
	for _, s := range syms {
		if _, ok := symptomSpeciality[s]; !ok {
			t.Fatalf("Symptoms() returned unknown term %q", s)
		}
	}
}
