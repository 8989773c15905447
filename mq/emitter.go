package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"medira/db"
	"medira/rdx"
)

const channel = "hospital-events"

// Event is an audit record describing a state change performed by an actor.
type Event struct {
	Type     string `json:"type" bson:"type"`
	ActorID  string `json:"actor_id" bson:"actorid"`
	EntityID string `json:"entity_id" bson:"entityid"`
	Detail   string `json:"detail,omitempty" bson:"detail,omitempty"`
	At       int64  `json:"at" bson:"at"`
}

// Emit publishes an audit event to Redis. Failures are logged, never fatal;
// the request that triggered the event has already committed.
func Emit(eventType, actorID, entityID, detail string) {
	ev := Event{
		Type:     eventType,
		ActorID:  actorID,
		EntityID: entityID,
		Detail:   detail,
		At:       time.Now().Unix(),
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] failed to marshal event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(context.Background(), channel, data).Err(); err != nil {
		log.Printf("[Emit] failed to publish event: %v", err)
	}
}

// StartAuditWorker drains published events into the audit collection.
func StartAuditWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[AuditWorker] listening for hospital events...")

	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[AuditWorker] failed to parse event: %v", err)
			continue
		}
		if _, err := db.AuditCollection.InsertOne(ctx, ev); err != nil {
			log.Printf("[AuditWorker] insert failed: %v", err)
		}
	}
}
