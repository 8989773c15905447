package emergency

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/models"
	"medira/mq"
	"medira/rdx"
	"medira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxGrantDuration = 24 * time.Hour

// GrantActive decides at read time whether a grant still authorizes access.
// There is no background expiry job; a stale grant simply stops working.
func GrantActive(g *models.EmergencyGrant, now time.Time) bool {
	return g != nil && now.Before(g.ExpiresAt)
}

// POST /api/emergency/grants  (admin)
func CreateGrant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		PatientID string `json:"patientid"`
		GranteeID string `json:"granteeid"`
		Reason    string `json:"reason"`
		Minutes   int    `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.PatientID == "" || body.GranteeID == "" || body.Reason == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "patient, grantee and reason are required")
		return
	}

	duration := time.Duration(body.Minutes) * time.Minute
	if duration <= 0 || duration > maxGrantDuration {
		utils.RespondWithError(w, http.StatusBadRequest, "minutes must be between 1 and 1440")
		return
	}

	grant := models.EmergencyGrant{
		GrantID:   "eg" + utils.GenerateRandomString(12),
		PatientID: body.PatientID,
		GranteeID: body.GranteeID,
		GrantedBy: middleware.UserIDFromContext(r.Context()),
		Reason:    body.Reason,
		ExpiresAt: time.Now().Add(duration),
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.EmergencyGrantsCollection.InsertOne(ctx, grant); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	// cached copy lets the access path skip Mongo on the hot check
	if err := rdx.SetWithExpiry(grantKey(grant.PatientID, grant.GranteeID), grant.GrantID, duration); err != nil {
		log.Printf("emergency: grant cache write failed: %v", err)
	}

	mq.Emit("emergency-granted", grant.GrantedBy, grant.GrantID, grant.GranteeID+">"+grant.PatientID)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"grant": grant})
}

func grantKey(patientID, granteeID string) string {
	return "emgrant:" + patientID + ":" + granteeID
}

// GET /api/emergency/patients/:patientid/record  (doctor, staff)
// Every attempt is audited, allowed or not.
func AccessPatientRecord(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	patientID := ps.ByName("patientid")
	granteeID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	allowed := hasActiveGrant(ctx, patientID, granteeID)
	audit(ctx, patientID, granteeID, allowed)

	if !allowed {
		mq.Emit("emergency-denied", granteeID, patientID, "")
		utils.RespondWithError(w, http.StatusForbidden, "no active emergency grant")
		return
	}

	var patient models.User
	err := db.UserCollection.FindOne(ctx,
		bson.M{"userid": patientID},
		options.FindOne().SetProjection(bson.M{"password": 0, "refresh_token": 0, "refresh_expiry": 0}),
	).Decode(&patient)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "patient not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	prescriptions := loadPatientPrescriptions(ctx, patientID)

	mq.Emit("emergency-accessed", granteeID, patientID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"patient":       patient,
		"prescriptions": prescriptions,
	})
}

func hasActiveGrant(ctx context.Context, patientID, granteeID string) bool {
	// redis key carries the TTL, so a hit is an active grant
	if exists, err := rdx.Exists(grantKey(patientID, granteeID)); err == nil && exists {
		return true
	}

	var grant models.EmergencyGrant
	err := db.EmergencyGrantsCollection.FindOne(ctx,
		bson.M{"patientid": patientID, "granteeid": granteeID},
		options.FindOne().SetSort(bson.D{{Key: "expiresat", Value: -1}}),
	).Decode(&grant)
	if err != nil {
		return false
	}
	return GrantActive(&grant, time.Now())
}

func audit(ctx context.Context, patientID, granteeID string, allowed bool) {
	row := models.EmergencyAccess{
		AccessID:  "ea" + utils.GenerateRandomString(12),
		PatientID: patientID,
		GranteeID: granteeID,
		Allowed:   allowed,
		At:        time.Now(),
	}
	if _, err := db.EmergencyAccessCollection.InsertOne(ctx, row); err != nil {
		log.Printf("emergency: audit insert failed: %v", err)
	}
}

func loadPatientPrescriptions(ctx context.Context, patientID string) []models.Prescription {
	cur, err := db.PrescriptionsCollection.Find(ctx,
		bson.M{"patientid": patientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil
	}
	defer cur.Close(ctx)

	var out []models.Prescription
	for cur.Next(ctx) {
		var p models.Prescription
		if err := cur.Decode(&p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// GET /api/emergency/audit[?patientid=]  (admin)
func GetAccessLog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if pid := r.URL.Query().Get("patientid"); pid != "" {
		filter["patientid"] = pid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.EmergencyAccessCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(200))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var rows []models.EmergencyAccess
	for cur.Next(ctx) {
		var row models.EmergencyAccess
		if err := cur.Decode(&row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"accesses": rows})
}
