// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Global roles. Per-project roles live on Membership, not here.
const (
	GlobalRoleSuperAdmin = "superadmin"
	GlobalRoleNone       = "none"
)

// User represents everyone who can sign in to the chat service.
//
// NOTE:
//   - Project membership is not embedded on User.
//     Use the memberships collection to discover a user's projects.
//   - CurrentOTP / OTPExpiresAt hold the in-flight login code; both are
//     cleared on successful verification.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Phone      string             `bson:"phone" json:"phone"`               // E.164, normalized
	GlobalRole string             `bson:"global_role" json:"global_role"`   // superadmin | none
	IsBlocked  bool               `bson:"is_blocked" json:"is_blocked"`
	IsApproved bool               `bson:"is_approved" json:"is_approved"`

	CurrentOTP   string     `bson:"current_otp,omitempty" json:"-"`
	OTPExpiresAt *time.Time `bson:"otp_expires_at,omitempty" json:"-"`

	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	LastActive *time.Time `bson:"last_active,omitempty" json:"last_active,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
