package triage

import (
	"context"
	"net/http"
	"time"

	"medira/db"
	"medira/models"
	"medira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSpeciality is returned when no symptom rule matches.
const DefaultSpeciality = "general medicine"

var symptomSpeciality = map[string]string{
	"chest pain":          "cardiology",
	"palpitations":        "cardiology",
	"shortness of breath": "pulmonology",
	"cough":               "pulmonology",
	"wheezing":            "pulmonology",
	"headache":            "neurology",
	"migraine":            "neurology",
	"seizure":             "neurology",
	"dizziness":           "neurology",
	"abdominal pain":      "gastroenterology",
	"nausea":              "gastroenterology",
	"vomiting":            "gastroenterology",
	"diarrhea":            "gastroenterology",
	"joint pain":          "orthopedics",
	"back pain":           "orthopedics",
	"fracture":            "orthopedics",
	"rash":                "dermatology",
	"itching":             "dermatology",
	"acne":                "dermatology",
	"sore throat":         "otolaryngology",
	"ear pain":            "otolaryngology",
	"blurred vision":      "ophthalmology",
	"eye pain":            "ophthalmology",
	"frequent urination":  "urology",
	"fever":               "general medicine",
	"fatigue":             "general medicine",
	"anxiety":             "psychiatry",
	"depression":          "psychiatry",
	"insomnia":            "psychiatry",
}

// SpecialityFor maps a free-text symptom to a speciality. Lookup is
// case- and whitespace-insensitive; unknown symptoms fall back to
// general medicine rather than failing.
func SpecialityFor(symptom string) string {
	if s, ok := symptomSpeciality[utils.NormalizeTerm(symptom)]; ok {
		return s
	}
	return DefaultSpeciality
}

// Symptoms lists the known symptom terms.
func Symptoms() []string {
	out := make([]string, 0, len(symptomSpeciality))
	for s := range symptomSpeciality {
		out = append(out, s)
	}
	return out
}

// GET /api/triage?symptom=...
// Resolves the speciality and lists active doctors carrying it.
func Lookup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	symptom := r.URL.Query().Get("symptom")
	if symptom == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "symptom is required")
		return
	}

	speciality := SpecialityFor(symptom)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.UserCollection.Find(ctx,
		bson.M{"role": models.RoleDoctor, "speciality": speciality, "is_active": true},
		options.Find().SetProjection(bson.M{"password": 0, "refresh_token": 0, "refresh_expiry": 0}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var doctors []models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			continue
		}
		doctors = append(doctors, u)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"symptom":    symptom,
		"speciality": speciality,
		"doctors":    doctors,
	})
}

// GET /api/triage/symptoms
func ListSymptoms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"symptoms": Symptoms()})
}
