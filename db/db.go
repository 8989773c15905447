package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection            *mongo.Collection
	SlotCollection            *mongo.Collection
	MedicinesCollection       *mongo.Collection
	PrescriptionsCollection   *mongo.Collection
	InvoicesCollection        *mongo.Collection
	LeavesCollection          *mongo.Collection
	EmergencyGrantsCollection *mongo.Collection
	EmergencyAccessCollection *mongo.Collection
	AuditCollection           *mongo.Collection
	Client                    *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("medira")
	UserCollection = database.Collection("users")
	SlotCollection = database.Collection("slots")
	MedicinesCollection = database.Collection("medicines")
	PrescriptionsCollection = database.Collection("prescriptions")
	InvoicesCollection = database.Collection("invoices")
	LeavesCollection = database.Collection("leaves")
	EmergencyGrantsCollection = database.Collection("emergencygrants")
	EmergencyAccessCollection = database.Collection("emergencyaccess")
	AuditCollection = database.Collection("audit")

	EnsureIndexes()
}

// EnsureIndexes creates the indexes the write paths rely on. The unique
// (day, band) index is what makes concurrent slot creation collapse into a
// single cell per weekly opportunity.
func EnsureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := SlotCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "day", Value: 1}, {Key: "band", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("slot index creation failed: %v", err)
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("user index creation failed: %v", err)
	}

	_, err = InvoicesCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patientid", Value: 1}},
	})
	if err != nil {
		log.Printf("invoice index creation failed: %v", err)
	}
}
