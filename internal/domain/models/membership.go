// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project roles carried on Membership.
const (
	ProjectRoleUser  = "user"
	ProjectRoleAdmin = "project_admin"
)

// Membership is the authoritative join between users and projects.
// At most one active document per (user_id, project_id); enforced by a
// unique partial index, not by read-then-write.
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Role      string             `bson:"role" json:"role"` // "user" | "project_admin"
	IsActive  bool               `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
