// internal/app/features/messages/messages.go
package messages

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/policy/grouppolicy"
	messagestore "github.com/thiraviyalingesh/company-chat/internal/app/store/messages"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type postRequest struct {
	Body string `json:"body"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ServePost handles POST /groups/{groupID}/messages. In channels only
// project admins and superadmins may post; in plain groups any group
// member may.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	access, group, ok := h.routeGroup(w, r)
	if !ok {
		return
	}

	canPost, err := grouppolicy.CanPostInGroup(r.Context(), h.Resolver, access, group)
	if err != nil {
		h.Log.Error("messages: post policy failed",
			zap.String("group_id", group.ID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if !canPost {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	var req postRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.Messages.Create(r.Context(), group.ID, access.UserID, req.Body)
	if errors.Is(err, messagestore.ErrEmptyBody) || errors.Is(err, messagestore.ErrBodyTooLong) {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "messages: create", err)
		return
	}

	respond.JSON(w, http.StatusCreated, messageResponse{
		ID:         msg.ID.Hex(),
		SenderID:   msg.SenderID.Hex(),
		SenderName: access.Name,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	})
}

// ServeList handles GET /groups/{groupID}/messages?before=<id>&limit=<n>:
// newest first, cursor-paged on message id.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	access, group, ok := h.routeGroup(w, r)
	if !ok {
		return
	}

	canRead, err := grouppolicy.CanReadGroup(r.Context(), h.Resolver, access, group)
	if err != nil {
		h.Log.Error("messages: read policy failed",
			zap.String("group_id", group.ID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if !canRead {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	before := primitive.NilObjectID
	if s := r.URL.Query().Get("before"); s != "" {
		before, err = primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid before cursor")
			return
		}
	}
	limit := int64(0)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			respond.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	msgs, err := h.Messages.ListPage(r.Context(), group.ID, before, limit)
	if err != nil {
		respond.Internal(w, h.Log, "messages: list", err)
		return
	}

	// Resolve sender names once per sender.
	names := map[primitive.ObjectID]string{}
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		name, ok := names[m.SenderID]
		if !ok {
			sender, err := h.Users.GetByID(r.Context(), m.SenderID)
			if err != nil && !errors.Is(err, userstore.ErrNotFound) {
				respond.Internal(w, h.Log, "messages: sender lookup", err)
				return
			}
			if sender != nil {
				name = sender.FullName
			}
			names[m.SenderID] = name
		}
		out = append(out, messageResponse{
			ID:         m.ID.Hex(),
			SenderID:   m.SenderID.Hex(),
			SenderName: name,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"messages": out})
}

// ServeDelete handles DELETE /groups/{groupID}/messages/{messageID}.
// A sender may delete their own message; project admins and superadmins
// may delete anyone's.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	access, group, ok := h.routeGroup(w, r)
	if !ok {
		return
	}

	messageID, err := chiObjectID(r, "messageID")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid message id")
		return
	}

	msg, err := h.Messages.GetByID(r.Context(), messageID)
	if errors.Is(err, messagestore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "messages: load message", err)
		return
	}
	if msg.GroupID != group.ID {
		respond.Error(w, http.StatusNotFound, "message not found")
		return
	}

	if msg.SenderID != access.UserID {
		canManage, err := grouppolicy.CanManageGroup(r.Context(), h.Resolver, access, group)
		if err != nil {
			h.Log.Error("messages: delete policy failed",
				zap.String("group_id", group.ID.Hex()), zap.Error(err))
			respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		if !canManage {
			respond.Error(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	if err := h.Messages.Delete(r.Context(), messageID); err != nil && !errors.Is(err, messagestore.ErrNotFound) {
		respond.Internal(w, h.Log, "messages: delete", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func chiObjectID(r *http.Request, key string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, key))
}
