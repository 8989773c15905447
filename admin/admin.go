package admin

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

var assignableRoles = map[string]bool{
	models.RolePatient:    true,
	models.RoleDoctor:     true,
	models.RolePharmacist: true,
	models.RoleStaff:      true,
	models.RoleAdmin:      true,
}

// GET /api/admin/users[?role=&active=]
func ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}
	switch r.URL.Query().Get("active") {
	case "true":
		filter["is_active"] = true
	case "false":
		filter["is_active"] = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.UserCollection.Find(ctx, filter,
		options.Find().
			SetProjection(bson.M{"password": 0, "refresh_token": 0, "refresh_expiry": 0}).
			SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var users []models.UserProfileResponse
	for cur.Next(ctx) {
		var u models.UserProfileResponse
		if err := cur.Decode(&u); err != nil {
			continue
		}
		users = append(users, u)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"users": users})
}

// PUT /api/admin/users/:userid/roles — replaces the user's role set.
func SetUserRoles(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Roles) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "at least one role is required")
		return
	}
	for _, role := range body.Roles {
		if !assignableRoles[role] {
			utils.RespondWithError(w, http.StatusBadRequest, "unknown role "+role)
			return
		}
	}

	targetID := ps.ByName("userid")
	adminID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"userid": targetID},
		bson.M{"$set": bson.M{"role": body.Roles, "updated_at": time.Now()}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0, "refresh_token": 0, "refresh_expiry": 0}),
	)
	var updated models.UserProfileResponse
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	dropCaches(targetID)
	mq.Emit("roles-changed", adminID, targetID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": updated})
}

// POST /api/admin/users/:userid/activate
func ActivateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	setActive(w, r, ps.ByName("userid"), true, "user-activated")
}

// POST /api/admin/users/:userid/deactivate
// Deactivation blocks future logins; live tokens are dropped from the
// session store so they stop working too.
func DeactivateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	setActive(w, r, ps.ByName("userid"), false, "user-deactivated")
}

func setActive(w http.ResponseWriter, r *http.Request, targetID string, active bool, event string) {
	adminID := middleware.UserIDFromContext(r.Context())
	if targetID == adminID && !active {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot deactivate yourself")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": targetID},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	if !active {
		if _, err := rdx.RdxHdel("sessions", targetID); err != nil {
			log.Printf("admin: session drop failed for %s: %v", targetID, err)
		}
	}
	dropCaches(targetID)

	mq.Emit(event, adminID, targetID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

func dropCaches(userID string) {
	if err := rdx.RdxDel("profile:" + userID); err != nil {
		log.Printf("admin: cache drop failed for %s: %v", userID, err)
	}
}
