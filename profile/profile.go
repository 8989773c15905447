package profile

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
	"golang.org/x/crypto/bcrypt"
)

const profileCacheTTL = 10 * time.Minute

func cacheKey(userID string) string {
	return "profile:" + userID
}

// GET /api/profile
func GetMyProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.UserIDFromContext(r.Context())

	if cached, err := rdx.RdxGet(cacheKey(userID)); err == nil && cached != "" {
		var prof models.UserProfileResponse
		if json.Unmarshal([]byte(cached), &prof) == nil {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"profile": prof})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prof, err := loadProfile(ctx, userID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	if raw, err := json.Marshal(prof); err == nil {
		if err := rdx.SetWithExpiry(cacheKey(userID), string(raw), profileCacheTTL); err != nil {
			log.Printf("profile: cache write failed: %v", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"profile": prof})
}

func loadProfile(ctx context.Context, userID string) (*models.UserProfileResponse, error) {
	var prof models.UserProfileResponse
	err := db.UserCollection.FindOne(ctx,
		bson.M{"userid": userID},
		options.FindOne().SetProjection(bson.M{"password": 0, "refresh_token": 0, "refresh_expiry": 0}),
	).Decode(&prof)
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// PUT /api/profile — partial update of the caller's own fields.
func EditProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Name        *string `json:"name"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
		Address     *string `json:"address"`
		Password    *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Email != nil {
		set["email"] = *body.Email
	}
	if body.PhoneNumber != nil {
		set["phone_number"] = *body.PhoneNumber
	}
	if body.Address != nil {
		set["address"] = *body.Address
	}
	if body.Password != nil {
		if len(*body.Password) < 8 {
			utils.RespondWithError(w, http.StatusBadRequest, "password too short")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		set["password"] = string(hashed)
	}

	userID := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": userID}, bson.M{"$set": set}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	invalidateCache(userID)
	mq.Emit("profile-edited", userID, userID, "")

	prof, err := loadProfile(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"profile": prof})
}

func invalidateCache(userID string) {
	if err := rdx.RdxDel(cacheKey(userID)); err != nil {
		log.Printf("profile: cache invalidation failed: %v", err)
	}
}
