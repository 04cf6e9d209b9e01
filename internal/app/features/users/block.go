// internal/app/features/users/block.go
package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeBlock handles POST /users/{userID}/block. A blocked user's
// token stops resolving on their next request.
func (h *Handler) ServeBlock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// ServeUnblock handles POST /users/{userID}/unblock.
func (h *Handler) ServeUnblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *Handler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if blocked && userID == actor.ID {
		respond.Error(w, http.StatusUnprocessableEntity, "you cannot block yourself")
		return
	}

	if err := h.Users.SetBlocked(r.Context(), userID, blocked); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		respond.Internal(w, h.Log, "users: set blocked", err)
		return
	}

	eventType := audit.EventUserBlocked
	status := "blocked"
	if !blocked {
		eventType = audit.EventUserUnblocked
		status = "unblocked"
	}
	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserID:    &userID,
		ActorID:   &actor.ID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
	})
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"user_id": userID.Hex(),
	})
}
