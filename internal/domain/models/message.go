// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one chat message in a group or channel. Body is sanitized
// before storage. Live delivery to clients is the document store's
// change-stream concern, not ours.
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	SenderID primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	Body     string             `bson:"body" json:"body"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
