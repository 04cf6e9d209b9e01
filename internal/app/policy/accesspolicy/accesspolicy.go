// Package accesspolicy answers "can this user act on this project?".
//
// Authorization rules:
//   - Superadmins hold an implicit project_admin-equivalent role in
//     every project, with or without a membership record
//   - Project admins manage membership and groups within their project
//   - Regular members can read and post in their groups
//   - Missing or malformed membership data means no access (fail
//     closed); only transport failures surface as errors, so an outage
//     is never reported as a denial
package accesspolicy

import (
	"context"
	"errors"

	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Resolver resolves project-scoped roles against the memberships
// collection.
type Resolver struct {
	memberships *membershipstore.Store
}

// NewResolver builds a Resolver over the given database.
func NewResolver(db *mongo.Database) *Resolver {
	return &Resolver{memberships: membershipstore.New(db)}
}

// RoleInProject resolves the access context's role within a project.
// Superadmins short-circuit to RoleProjectAdmin without a membership
// read. No active membership resolves to RoleNone with a nil error:
// absence is an answer, not a failure.
func (r *Resolver) RoleInProject(ctx context.Context, access authz.AccessContext, projectID primitive.ObjectID) (authz.Role, error) {
	if access.IsSuperAdmin() {
		return authz.RoleProjectAdmin, nil
	}
	return r.roleFor(ctx, access.UserID, projectID)
}

func (r *Resolver) roleFor(ctx context.Context, userID, projectID primitive.ObjectID) (authz.Role, error) {
	role, err := r.memberships.ActiveRole(ctx, userID, projectID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		return authz.RoleNone, nil
	}
	if err != nil {
		return authz.RoleNone, err
	}
	switch role {
	case models.ProjectRoleAdmin:
		return authz.RoleProjectAdmin, nil
	case models.ProjectRoleUser:
		return authz.RoleUser, nil
	default:
		// Unknown role value in the membership document: fail closed.
		return authz.RoleNone, nil
	}
}

// CanManageProject reports whether the user may administer the project:
// superadmin or project_admin.
func (r *Resolver) CanManageProject(ctx context.Context, access authz.AccessContext, projectID primitive.ObjectID) (bool, error) {
	role, err := r.RoleInProject(ctx, access, projectID)
	if err != nil {
		return false, err
	}
	return role == authz.RoleProjectAdmin, nil
}

// IsProjectMember reports whether the user holds any active role in the
// project (superadmins always do).
func (r *Resolver) IsProjectMember(ctx context.Context, access authz.AccessContext, projectID primitive.ObjectID) (bool, error) {
	role, err := r.RoleInProject(ctx, access, projectID)
	if err != nil {
		return false, err
	}
	return role != authz.RoleNone, nil
}
