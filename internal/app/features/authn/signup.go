// internal/app/features/authn/signup.go
package authn

import (
	"errors"
	"net/http"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	projectstore "github.com/thiraviyalingesh/company-chat/internal/app/store/projects"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/normalize"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type signupRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	// ProjectID, when set, asks to join that project on approval.
	// Empty means a company-wide signup.
	ProjectID string `json:"project_id,omitempty"`
}

// ServeSignup handles POST /auth/signup. The new account starts
// unapproved and waits in the pending queue until a superadmin approves
// or rejects it; until then the phone cannot sign in.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if normalize.Name(req.FullName) == "" {
		respond.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}

	var projectID *primitive.ObjectID
	if req.ProjectID != "" {
		id, err := primitive.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		project, err := h.Projects.GetByID(r.Context(), id)
		if errors.Is(err, projectstore.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		if err != nil {
			respond.Internal(w, h.Log, "signup: project lookup", err)
			return
		}
		if !project.IsActive {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		projectID = &project.ID
	}

	user, err := h.Users.Create(r.Context(), models.User{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if errors.Is(err, userstore.ErrDuplicatePhone) {
		respond.Error(w, http.StatusConflict, "an account with this phone already exists")
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	if err := h.Invitations.AddPending(r.Context(), projectID, user.ID, now); err != nil {
		// The user row exists but the pending entry does not, so the
		// signup is invisible to admins. Undo the user insert so the
		// phone can retry cleanly.
		if _, delErr := h.Users.Delete(r.Context(), user.ID); delErr != nil {
			h.Log.Error("signup: orphan user cleanup failed",
				zap.String("user_id", user.ID.Hex()), zap.Error(delErr))
		}
		respond.Internal(w, h.Log, "signup: queue pending entry", err)
		return
	}

	h.Log.Info("signup queued",
		zap.String("user_id", user.ID.Hex()),
		zap.Bool("project_scoped", projectID != nil))
	respond.JSON(w, http.StatusAccepted, map[string]string{
		"status":  "pending_approval",
		"user_id": user.ID.Hex(),
	})
}
