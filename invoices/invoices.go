package invoices

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/models"
	"medira/mq"
	"medira/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ComputeTotal sums the line items, rounded to cents. The server never
// trusts a client-supplied total.
func ComputeTotal(items []models.InvoiceItem) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return math.Round(total*100) / 100
}

// POST /api/invoices  (staff, admin)
func CreateInvoice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		PatientID string               `json:"patientid"`
		Items     []models.InvoiceItem `json:"items"`
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
		if it.Description == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid line item")
			return
		}
	}

	inv := models.Invoice{
		InvID:     "inv" + utils.GenerateRandomString(12),
		Number:    uuid.NewString(),
		PatientID: body.PatientID,
		Items:     body.Items,
		Total:     ComputeTotal(body.Items),
		Status:    models.InvoiceIssued,
		IssuedBy:  middleware.UserIDFromContext(r.Context()),
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.InvoicesCollection.InsertOne(ctx, inv); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit("invoice-issued", inv.IssuedBy, inv.InvID, inv.PatientID)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"invoice": inv})
}

// GET /api/invoices/mine  (patient)
func GetMyInvoices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listInvoices(w, bson.M{"patientid": middleware.UserIDFromContext(r.Context())})
}

// GET /api/invoices[?patientid=&status=]  (staff, admin)
func ListInvoices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if pid := r.URL.Query().Get("patientid"); pid != "" {
		filter["patientid"] = pid
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	listInvoices(w, filter)
}

func listInvoices(w http.ResponseWriter, filter bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.InvoicesCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var out []models.Invoice
	for cur.Next(ctx) {
		var inv models.Invoice
		if err := cur.Decode(&inv); err != nil {
			continue
		}
		out = append(out, inv)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"invoices": out})
}

func loadInvoice(ctx context.Context, invID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := db.InvoicesCollection.FindOne(ctx, bson.M{"invid": invID}).Decode(&inv)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// POST /api/invoices/:invid/pay  (staff, admin)
func MarkInvoicePaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := db.InvoicesCollection.FindOneAndUpdate(ctx,
		bson.M{"invid": ps.ByName("invid"), "status": models.InvoiceIssued},
		bson.M{"$set": bson.M{"status": models.InvoicePaid, "paidat": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Invoice
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusUnprocessableEntity, "invoice missing or not payable")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit("invoice-paid", middleware.UserIDFromContext(r.Context()), updated.InvID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"invoice": updated})
}

// POST /api/invoices/:invid/void  (admin)
func VoidInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := db.InvoicesCollection.FindOneAndUpdate(ctx,
		bson.M{"invid": ps.ByName("invid"), "status": models.InvoiceIssued},
		bson.M{"$set": bson.M{"status": models.InvoiceVoid}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Invoice
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "invoice missing or not voidable")
		return
	}

	mq.Emit("invoice-voided", middleware.UserIDFromContext(r.Context()), updated.InvID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"invoice": updated})
}
