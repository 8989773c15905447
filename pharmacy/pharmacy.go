package pharmacy

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/models"
	"medira/mq"
	"medira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func genID() string {
	return "m" + utils.GenerateRandomString(12)
}

// POST /api/pharmacy/medicines  (pharmacist, admin)
func CreateMedicine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var med models.Medicine
	if err := json.NewDecoder(r.Body).Decode(&med); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if med.Name == "" || med.Stock < 0 || med.Price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}

	med.MedID = genID()
	med.CreatedAt = time.Now()
	med.UpdatedAt = med.CreatedAt

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.MedicinesCollection.InsertOne(ctx, med); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit("medicine-created", middleware.UserIDFromContext(r.Context()), med.MedID, med.Name)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"medicine": med})
}

// GET /api/pharmacy/medicines[?low=true]
func ListMedicines(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if r.URL.Query().Get("low") == "true" {
		filter["$expr"] = bson.M{"$lte": bson.A{"$stock", "$reorder_level"}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.MedicinesCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var meds []models.Medicine
	for cur.Next(ctx) {
		var m models.Medicine
		if err := cur.Decode(&m); err != nil {
			continue
		}
		meds = append(meds, m)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"medicines": meds})
}

// GET /api/pharmacy/medicines/:medid
func GetMedicine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var med models.Medicine
	err := db.MedicinesCollection.FindOne(ctx, bson.M{"medid": ps.ByName("medid")}).Decode(&med)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"medicine": med})
}

// PUT /api/pharmacy/medicines/:medid  (pharmacist, admin)
func EditMedicine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Name         *string  `json:"name"`
		GenericName  *string  `json:"generic_name"`
		Form         *string  `json:"form"`
		Unit         *string  `json:"unit"`
		ReorderLevel *int     `json:"reorder_level"`
		Price        *float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.GenericName != nil {
		set["generic_name"] = *body.GenericName
	}
	if body.Form != nil {
		set["form"] = *body.Form
	}
	if body.Unit != nil {
		set["unit"] = *body.Unit
	}
	if body.ReorderLevel != nil {
		set["reorder_level"] = *body.ReorderLevel
	}
	if body.Price != nil {
		set["price"] = *body.Price
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := db.MedicinesCollection.FindOneAndUpdate(ctx,
		bson.M{"medid": ps.ByName("medid")},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Medicine
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "medicine not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"medicine": updated})
}

// POST /api/pharmacy/medicines/:medid/restock  (pharmacist, admin)
func RestockMedicine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Quantity <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := db.MedicinesCollection.FindOneAndUpdate(ctx,
		bson.M{"medid": ps.ByName("medid")},
		bson.M{
			"$inc": bson.M{"stock": body.Quantity},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Medicine
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "medicine not found")
		return
	}

	mq.Emit("medicine-restocked", middleware.UserIDFromContext(r.Context()), updated.MedID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"medicine": updated})
}

// TakeStock atomically decrements stock for one medicine; the filter
// requires enough stock so a concurrent dispense cannot oversell.
// Returns false when the medicine is missing or short.
func TakeStock(ctx context.Context, medicineID string, qty int) (bool, error) {
	res, err := db.MedicinesCollection.UpdateOne(ctx,
		bson.M{"medid": medicineID, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ReturnStock undoes a TakeStock when a multi-item dispense aborts midway.
func ReturnStock(ctx context.Context, medicineID string, qty int) error {
	_, err := db.MedicinesCollection.UpdateOne(ctx,
		bson.M{"medid": medicineID},
		bson.M{"$inc": bson.M{"stock": qty}},
	)
	return err
}
