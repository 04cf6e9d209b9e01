// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingSignup is one entry in an Invitation's pending list: a user who
// signed up and is waiting for superadmin approval.
type PendingSignup struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	SignedUpAt time.Time         `bson:"signed_up_at" json:"signed_up_at"`
}

// Invitation collects pending signups, either for one project or
// company-wide (ProjectID nil). IsPending is denormalized: true iff
// Pending is non-empty, recomputed on every mutation.
type Invitation struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Pending   []PendingSignup     `bson:"pending" json:"pending"`
	IsPending bool                `bson:"is_pending" json:"is_pending"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
