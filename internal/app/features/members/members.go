// internal/app/features/members/members.go
package members

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type addRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

type memberResponse struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// ServeList handles GET /projects/{projectID}/members. Any member of
// the project may list; managers and superadmins too.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	access, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	isMember, err := h.Resolver.IsProjectMember(r.Context(), access, projectID)
	if err != nil {
		h.Log.Error("members: role resolution failed", zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if !isMember {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	ms, err := h.Memberships.ListByProject(r.Context(), projectID)
	if err != nil {
		respond.Internal(w, h.Log, "members: list", err)
		return
	}

	out := make([]memberResponse, 0, len(ms))
	for _, m := range ms {
		user, err := h.Users.GetByID(r.Context(), m.UserID)
		if errors.Is(err, userstore.ErrNotFound) {
			continue
		}
		if err != nil {
			respond.Internal(w, h.Log, "members: user lookup", err)
			return
		}
		out = append(out, memberResponse{
			UserID:   user.ID.Hex(),
			FullName: user.FullName,
			Phone:    user.Phone,
			Role:     m.Role,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"members": out})
}

// ServeAdd handles POST /projects/{projectID}/members: adds an existing
// approved user to the project and fans them into the general channel.
// Adding someone who is already a member succeeds without change.
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	var req addRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	user, err := h.Users.GetByID(r.Context(), userID)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "members: user lookup", err)
		return
	}
	if !user.IsApproved {
		respond.Error(w, http.StatusUnprocessableEntity, "user is pending approval")
		return
	}

	if err := h.Memberships.Add(r.Context(), userID, projectID, req.Role); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.Groups.AddMemberToGeneralChannel(r.Context(), projectID, userID); err != nil {
		respond.Internal(w, h.Log, "members: general channel fan-in", err)
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &projectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberAdded,
		UserID:    &userID,
		ActorID:   &actor.UserID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"role": req.Role},
	})
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "added",
		"user_id": userID.Hex(),
	})
}

// ServeSetRole handles PUT /projects/{projectID}/members/{userID}/role.
func (h *Handler) ServeSetRole(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req setRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Memberships.SetRole(r.Context(), userID, projectID, req.Role); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &projectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberRoleChanged,
		UserID:    &userID,
		ActorID:   &actor.UserID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"role": req.Role},
	})
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "role_changed",
		"user_id": userID.Hex(),
	})
}

// ServeRemove handles DELETE /projects/{projectID}/members/{userID}:
// deactivates the membership and pulls the user out of every group in
// the project, general channel included.
func (h *Handler) ServeRemove(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Memberships.Deactivate(r.Context(), userID, projectID); err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "membership not found")
			return
		}
		respond.Internal(w, h.Log, "members: deactivate", err)
		return
	}
	if _, err := h.Groups.RemoveMemberFromProjectGroups(r.Context(), projectID, userID); err != nil {
		respond.Internal(w, h.Log, "members: group removal", err)
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &projectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberRemoved,
		UserID:    &userID,
		ActorID:   &actor.UserID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
	})
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "removed",
		"user_id": userID.Hex(),
	})
}
