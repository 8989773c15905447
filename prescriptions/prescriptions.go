package prescriptions

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/models"
	"medira/mq"
	"medira/pharmacy"
	"medira/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// POST /api/prescriptions  (doctor)
func CreatePrescription(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		PatientID string                    `json:"patientid"`
		Items     []models.PrescriptionItem `json:"items"`
		Notes     string                    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.PatientID == "" || len(body.Items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "patient and at least one item are required")
		return
	}
	for _, it := range body.Items {
		if it.MedicineID == "" || it.Quantity <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "every item needs a medicine and positive quantity")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// resolve medicine names so the document reads without joins
	items := make([]models.PrescriptionItem, 0, len(body.Items))
	for _, it := range body.Items {
		var med models.Medicine
		err := db.MedicinesCollection.FindOne(ctx, bson.M{"medid": it.MedicineID}).Decode(&med)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "medicine "+it.MedicineID+" not found")
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "db error")
			return
		}
		it.Name = med.Name
		items = append(items, it)
	}

	pres := models.Prescription{
		PresID:    "rx" + utils.GenerateRandomString(12),
		Number:    uuid.NewString(),
		PatientID: body.PatientID,
		DoctorID:  middleware.UserIDFromContext(r.Context()),
		Items:     items,
		Notes:     body.Notes,
		Status:    models.PrescriptionIssued,
		CreatedAt: time.Now(),
	}

	if _, err := db.PrescriptionsCollection.InsertOne(ctx, pres); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit("prescription-issued", pres.DoctorID, pres.PresID, pres.PatientID)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"prescription": pres})
}

// GET /api/prescriptions/mine  (patient)
func GetMyPrescriptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listPrescriptions(w, bson.M{"patientid": middleware.UserIDFromContext(r.Context())})
}

// GET /api/prescriptions/patient/:patientid  (doctor, pharmacist, admin)
func GetPatientPrescriptions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filter := bson.M{"patientid": ps.ByName("patientid")}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	listPrescriptions(w, filter)
}

func listPrescriptions(w http.ResponseWriter, filter bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.PrescriptionsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
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
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"prescriptions": out})
}

// POST /api/prescriptions/:presid/dispense  (pharmacist)
// Decrements stock per item; on a short item all earlier decrements are
// returned and the dispense fails without changing the prescription.
func DispensePrescription(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pharmacistID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pres models.Prescription
	err := db.PrescriptionsCollection.FindOne(ctx, bson.M{"presid": ps.ByName("presid")}).Decode(&pres)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "prescription not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if pres.Status != models.PrescriptionIssued {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "prescription is "+pres.Status)
		return
	}

	var taken []models.PrescriptionItem
	for _, it := range pres.Items {
		ok, err := pharmacy.TakeStock(ctx, it.MedicineID, it.Quantity)
		if err != nil || !ok {
			for _, t := range taken {
				_ = pharmacy.ReturnStock(ctx, t.MedicineID, t.Quantity)
			}
			if err != nil {
				utils.RespondWithError(w, http.StatusInternalServerError, "db error")
				return
			}
			utils.RespondWithError(w, http.StatusConflict, "insufficient stock for "+it.Name)
			return
		}
		taken = append(taken, it)
	}

	// only an issued prescription may flip to dispensed; a concurrent
	// dispense loses here and its stock is returned
	res, err := db.PrescriptionsCollection.UpdateOne(ctx,
		bson.M{"presid": pres.PresID, "status": models.PrescriptionIssued},
		bson.M{"$set": bson.M{
			"status":      models.PrescriptionDispensed,
			"dispensedby": pharmacistID,
			"dispensedat": time.Now(),
		}},
	)
	if err != nil || res.ModifiedCount == 0 {
		for _, t := range taken {
			_ = pharmacy.ReturnStock(ctx, t.MedicineID, t.Quantity)
		}
		utils.RespondWithError(w, http.StatusConflict, "prescription was dispensed concurrently")
		return
	}

	mq.Emit("prescription-dispensed", pharmacistID, pres.PresID, pres.PatientID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// POST /api/prescriptions/:presid/cancel  (issuing doctor, admin)
func CancelPrescription(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var pres models.Prescription
	err := db.PrescriptionsCollection.FindOne(ctx, bson.M{"presid": ps.ByName("presid")}).Decode(&pres)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "prescription not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if pres.DoctorID != userID && !middleware.HasRole(r.Context(), models.RoleAdmin) {
		utils.RespondWithError(w, http.StatusForbidden, "not your prescription")
		return
	}

	res, err := db.PrescriptionsCollection.UpdateOne(ctx,
		bson.M{"presid": pres.PresID, "status": models.PrescriptionIssued},
		bson.M{"$set": bson.M{"status": models.PrescriptionCancelled}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "only issued prescriptions can be cancelled")
		return
	}

	mq.Emit("prescription-cancelled", userID, pres.PresID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}
