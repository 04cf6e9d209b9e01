// internal/app/features/signups/list.go
package signups

import (
	"errors"
	"net/http"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	projectstore "github.com/thiraviyalingesh/company-chat/internal/app/store/projects"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"go.uber.org/zap"
)

type pendingSignup struct {
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	SignedUpAt  time.Time `json:"signed_up_at"`
	ProjectID   string    `json:"project_id,omitempty"`
	ProjectName string    `json:"project_name,omitempty"`
}

// ServeList handles GET /signups: all pending signups, hydrated with
// user and project names. Entries whose user record has vanished are
// skipped rather than failing the whole list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Invitations.ListPending(r.Context())
	if err != nil {
		respond.Internal(w, h.Log, "signups: list pending", err)
		return
	}

	projectNames := map[string]string{}
	out := make([]pendingSignup, 0)
	for _, inv := range invs {
		entry := pendingSignup{}
		if inv.ProjectID != nil {
			entry.ProjectID = inv.ProjectID.Hex()
			name, ok := projectNames[entry.ProjectID]
			if !ok {
				project, err := h.Projects.GetByID(r.Context(), *inv.ProjectID)
				if err != nil && !errors.Is(err, projectstore.ErrNotFound) {
					respond.Internal(w, h.Log, "signups: project lookup", err)
					return
				}
				if project != nil {
					name = project.Name
				}
				projectNames[entry.ProjectID] = name
			}
			entry.ProjectName = name
		}

		for _, p := range inv.Pending {
			user, err := h.Users.GetByID(r.Context(), p.UserID)
			if errors.Is(err, userstore.ErrNotFound) {
				h.Log.Warn("signups: pending entry without user record",
					zap.String("user_id", p.UserID.Hex()))
				continue
			}
			if err != nil {
				respond.Internal(w, h.Log, "signups: user lookup", err)
				return
			}
			e := entry
			e.UserID = user.ID.Hex()
			e.FullName = user.FullName
			e.Phone = user.Phone
			e.SignedUpAt = p.SignedUpAt
			out = append(out, e)
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"signups": out})
}
