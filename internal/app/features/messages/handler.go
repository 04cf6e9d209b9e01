// internal/app/features/messages/handler.go
package messages

import (
	"errors"
	"net/http"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/policy/accesspolicy"
	groupstore "github.com/thiraviyalingesh/company-chat/internal/app/store/groups"
	messagestore "github.com/thiraviyalingesh/company-chat/internal/app/store/messages"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves posting and reading messages in a group.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Resolver *accesspolicy.Resolver
	Groups   *groupstore.Store
	Messages *messagestore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Resolver: accesspolicy.NewResolver(db),
		Groups:   groupstore.New(db),
		Messages: messagestore.New(db),
		Users:    userstore.New(db),
	}
}

// routeGroup resolves the signed-in user and the {groupID} route param.
func (h *Handler) routeGroup(w http.ResponseWriter, r *http.Request) (authz.AccessContext, *models.Group, bool) {
	access, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return authz.AccessContext{}, nil, false
	}
	groupID, err := chiObjectID(r, "groupID")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid group id")
		return authz.AccessContext{}, nil, false
	}
	group, err := h.Groups.GetByID(r.Context(), groupID)
	if errors.Is(err, groupstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "group not found")
		return authz.AccessContext{}, nil, false
	}
	if err != nil {
		respond.Internal(w, h.Log, "messages: load group", err)
		return authz.AccessContext{}, nil, false
	}
	return access, group, true
}
