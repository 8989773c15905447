package auth

import (
	"context"
	"log"
	"os"
	"time"

	"medira/db"
	"medira/models"
	"medira/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin seeds the first administrator account from ADMIN_USERNAME /
// ADMIN_PASSWORD. Without it a fresh deployment has no way to approve slots
// or grant elevated roles. Does nothing when the variables are unset or the
// account already exists.
func EnsureAdmin(ctx context.Context) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	err := db.UserCollection.FindOne(ctx, bson.M{"username": username}).Err()
	if err == nil {
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Printf("admin bootstrap: lookup failed: %v", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("admin bootstrap: hash failed: %v", err)
		return
	}

	admin := models.User{
		UserID:    "u" + utils.GenerateRandomString(10),
		Username:  username,
		Email:     os.Getenv("ADMIN_EMAIL"),
		Password:  string(hashed),
		Role:      []string{models.RoleAdmin},
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := db.UserCollection.InsertOne(ctx, admin); err != nil {
		log.Printf("admin bootstrap: insert failed: %v", err)
		return
	}
	log.Printf("admin bootstrap: created account %s", username)
}
