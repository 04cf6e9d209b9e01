// internal/app/features/users/list.go
package users

import (
	"net/http"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
)

type listedUser struct {
	ID         string     `json:"id"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	GlobalRole string     `json:"global_role"`
	IsBlocked  bool       `json:"is_blocked"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// ServeList handles GET /users: every user, ordered by name.
// Superadmin only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	all, err := h.Users.List(r.Context())
	if err != nil {
		respond.Internal(w, h.Log, "users: list", err)
		return
	}

	out := make([]listedUser, 0, len(all))
	for _, u := range all {
		out = append(out, listedUser{
			ID:         u.ID.Hex(),
			FullName:   u.FullName,
			Phone:      u.Phone,
			GlobalRole: u.GlobalRole,
			IsBlocked:  u.IsBlocked,
			IsApproved: u.IsApproved,
			CreatedAt:  u.CreatedAt,
			LastActive: u.LastActive,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": out})
}
