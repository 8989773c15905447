package profile

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"medira/db"
	"medira/middleware"
	"medira/mq"
	"medira/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	avatarDir     = "./static/userpic"
	avatarThumbPx = 128
	maxAvatarSize = 10 << 20
)

// POST /api/profile/avatar — multipart upload, field "avatar".
// Saves a normalized JPEG plus a small thumbnail and points the user
// document at the new file.
func UploadAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "unable to parse form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "unreadable image")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	fileName := userID + ".jpg"

	thumbDir := filepath.Join(avatarDir, "thumb")
	if err := utils.EnsureDir(avatarDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create upload directory")
		return
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create thumbnail directory")
		return
	}

	if err := imaging.Save(img, filepath.Join(avatarDir, fileName)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	thumb := imaging.Resize(img, avatarThumbPx, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save thumbnail")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": userID},
		bson.M{"$set": bson.M{"avatar": "/userpic/" + fileName, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	invalidateCache(userID)
	mq.Emit("avatar-updated", userID, userID, "")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"avatar": "/userpic/" + fileName})
}
