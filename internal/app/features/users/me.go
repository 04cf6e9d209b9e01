// internal/app/features/users/me.go
package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

type profileMembership struct {
	ProjectID string `json:"project_id"`
	Role      string `json:"role"`
}

type profileResponse struct {
	ID          string              `json:"id"`
	FullName    string              `json:"full_name"`
	Phone       string              `json:"phone"`
	GlobalRole  string              `json:"global_role"`
	LastActive  *time.Time          `json:"last_active,omitempty"`
	Memberships []profileMembership `json:"memberships"`
}

// ServeMe handles GET /users/me: the caller's profile plus their
// active project memberships.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.Users.GetByID(r.Context(), current.ID)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "users: load profile", err)
		return
	}

	ms, err := h.Memberships.ListByUser(r.Context(), user.ID)
	if err != nil {
		respond.Internal(w, h.Log, "users: load memberships", err)
		return
	}

	out := profileResponse{
		ID:          user.ID.Hex(),
		FullName:    user.FullName,
		Phone:       user.Phone,
		GlobalRole:  user.GlobalRole,
		LastActive:  user.LastActive,
		Memberships: make([]profileMembership, 0, len(ms)),
	}
	for _, m := range ms {
		out.Memberships = append(out.Memberships, profileMembership{
			ProjectID: m.ProjectID.Hex(),
			Role:      m.Role,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
