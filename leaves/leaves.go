package leaves

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/models"
	"medira/mq"
	"medira/schedule"
	"medira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RangesOverlap reports whether two inclusive date ranges share a day.
// Dates are "2006-01-02" strings, which compare correctly as text.
func RangesOverlap(aFrom, aTo, bFrom, bTo string) bool {
	return aFrom <= bTo && bFrom <= aTo
}

// POST /api/leaves  (doctor, staff, pharmacist)
func RequestLeave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	from, err := schedule.ParseDate(body.From)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := schedule.ParseDate(body.To)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if to.Before(from) {
		utils.RespondWithError(w, http.StatusBadRequest, "to precedes from")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// an open request overlapping the same days is a duplicate
	cur, err := db.LeavesCollection.Find(ctx, bson.M{
		"userid": userID,
		"status": bson.M{"$in": bson.A{models.LeavePending, models.LeaveApproved}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var existing models.LeaveRequest
		if err := cur.Decode(&existing); err != nil {
			continue
		}
		if RangesOverlap(body.From, body.To, existing.From, existing.To) {
			utils.RespondWithError(w, http.StatusConflict, "overlaps an existing leave request")
			return
		}
	}

	leave := models.LeaveRequest{
		LeaveID:   "lv" + utils.GenerateRandomString(12),
		UserID:    userID,
		From:      body.From,
		To:        body.To,
		Reason:    body.Reason,
		Status:    models.LeavePending,
		CreatedAt: time.Now(),
	}
	if _, err := db.LeavesCollection.InsertOne(ctx, leave); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit("leave-requested", userID, leave.LeaveID, body.From+".."+body.To)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"leave": leave})
}

// GET /api/leaves/mine
func GetMyLeaves(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listLeaves(w, bson.M{"userid": middleware.UserIDFromContext(r.Context())})
}

// GET /api/leaves[?status=]  (admin)
func ListLeaves(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	listLeaves(w, filter)
}

func listLeaves(w http.ResponseWriter, filter bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.LeavesCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var out []models.LeaveRequest
	for cur.Next(ctx) {
		var lv models.LeaveRequest
		if err := cur.Decode(&lv); err != nil {
			continue
		}
		out = append(out, lv)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"leaves": out})
}

// POST /api/leaves/:leaveid/approve  (admin)
func ApproveLeave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	decideLeave(w, r, ps.ByName("leaveid"), models.LeaveApproved, "leave-approved")
}

// POST /api/leaves/:leaveid/reject  (admin)
func RejectLeave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	decideLeave(w, r, ps.ByName("leaveid"), models.LeaveRejected, "leave-rejected")
}

// only a pending request can be decided, and only once
func decideLeave(w http.ResponseWriter, r *http.Request, leaveID, status, event string) {
	var body struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	adminID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := db.LeavesCollection.FindOneAndUpdate(ctx,
		bson.M{"leaveid": leaveID, "status": models.LeavePending},
		bson.M{"$set": bson.M{
			"status":    status,
			"decidedby": adminID,
			"decidedat": time.Now(),
			"note":      body.Note,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.LeaveRequest
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusUnprocessableEntity, "leave missing or already decided")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit(event, adminID, updated.LeaveID, updated.UserID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"leave": updated})
}
