// Package authz exposes the per-request access context and the pure
// role checks that need no database lookup. Project-scoped decisions
// that read membership records live in internal/app/policy.
package authz

import (
	"net/http"
	"strings"

	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project-scoped roles as resolved against the memberships collection.
type Role string

const (
	RoleNone         Role = "none"
	RoleUser         Role = "user"
	RoleProjectAdmin Role = "project_admin"
)

// AccessContext is the identity snapshot a request operates under. It is
// built once per request from a fresh user fetch and passed by value, so
// call sites never re-read denormalized role fields piecemeal.
type AccessContext struct {
	UserID     primitive.ObjectID
	Name       string
	GlobalRole string
}

// IsSuperAdmin reports whether this context carries the superadmin
// global role. Any other value, including empty, is not superadmin.
func (a AccessContext) IsSuperAdmin() bool {
	return a.GlobalRole == "superadmin"
}

// UserCtx returns the access context for the request's signed-in user.
// ok=false means no authenticated user is present; the zero context it
// returns then carries no privileges.
func UserCtx(r *http.Request) (AccessContext, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return AccessContext{}, false
	}
	return AccessContext{
		UserID:     u.ID,
		Name:       u.Name,
		GlobalRole: strings.ToLower(u.GlobalRole),
	}, true
}

// IsSuperAdmin reports whether the request's user is a superadmin.
func IsSuperAdmin(r *http.Request) bool {
	a, ok := UserCtx(r)
	return ok && a.IsSuperAdmin()
}
