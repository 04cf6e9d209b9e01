// internal/app/features/signups/decide.go
package signups

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/timeouts"
	"github.com/thiraviyalingesh/company-chat/internal/app/workflow/approval"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeApprove handles POST /signups/{userID}/approve. Safe to retry:
// a repeat approve reports already_approved instead of failing.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	actor, userID, ok := h.decisionParams(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "approve signup")
	defer cancel()

	res, err := h.Engine.Approve(ctx, actor.ID, userID, auditlog.ClientIP(r))
	if errors.Is(err, approval.ErrSignupNotFound) {
		respond.Error(w, http.StatusNotFound, "no pending signup for this user")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "signups: approve", err)
		return
	}

	body := map[string]any{
		"status":  "approved",
		"user_id": res.UserID.Hex(),
	}
	if res.ProjectID != nil {
		body["project_id"] = res.ProjectID.Hex()
	}
	if res.AlreadyApproved {
		body["already_approved"] = true
	}
	respond.JSON(w, http.StatusOK, body)
}

// ServeReject handles POST /signups/{userID}/reject. The user record
// is deleted; the phone can sign up again from scratch.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	actor, userID, ok := h.decisionParams(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "reject signup")
	defer cancel()

	res, err := h.Engine.Reject(ctx, actor.ID, userID, auditlog.ClientIP(r))
	if errors.Is(err, approval.ErrSignupNotFound) {
		respond.Error(w, http.StatusNotFound, "no pending signup for this user")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "signups: reject", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"status":    "rejected",
		"user_id":   res.UserID.Hex(),
		"follow_up": res.FollowUp,
	})
}

func (h *Handler) decisionParams(w http.ResponseWriter, r *http.Request) (*auth.AuthUser, primitive.ObjectID, bool) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return nil, primitive.NilObjectID, false
	}
	return actor, userID, true
}
