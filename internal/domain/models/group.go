// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a conversation inside a project. When IsChannel is true only
// project admins (and superadmins) may post; groups allow any member to
// write. Each project has at most one group with IsGeneralChannel set,
// created alongside the project and never deleted.
type Group struct {
	ID               primitive.ObjectID   `bson:"_id" json:"id"`
	Name             string               `bson:"name" json:"name"`
	NameCI           string               `bson:"name_ci" json:"name_ci"`
	ProjectID        primitive.ObjectID   `bson:"project_id" json:"project_id"`
	IsChannel        bool                 `bson:"is_channel" json:"is_channel"`
	IsGeneralChannel bool                 `bson:"is_general_channel" json:"is_general_channel"`
	Members          []primitive.ObjectID `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is in the group's member list.
func (g *Group) HasMember(userID primitive.ObjectID) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}
