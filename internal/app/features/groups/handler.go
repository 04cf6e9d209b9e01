// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/policy/accesspolicy"
	groupstore "github.com/thiraviyalingesh/company-chat/internal/app/store/groups"
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	messagestore "github.com/thiraviyalingesh/company-chat/internal/app/store/messages"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves group and channel administration within a project.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	Resolver    *accesspolicy.Resolver
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Messages    *messagestore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		AuditLog:    audit,
		Resolver:    accesspolicy.NewResolver(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Messages:    messagestore.New(db),
	}
}

func (h *Handler) routeProject(w http.ResponseWriter, r *http.Request) (authz.AccessContext, primitive.ObjectID, bool) {
	access, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return authz.AccessContext{}, primitive.NilObjectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid project id")
		return authz.AccessContext{}, primitive.NilObjectID, false
	}
	return access, projectID, true
}

// requireManager additionally checks the caller may manage the project.
func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) (authz.AccessContext, primitive.ObjectID, bool) {
	access, projectID, ok := h.routeProject(w, r)
	if !ok {
		return access, projectID, false
	}
	canManage, err := h.Resolver.CanManageProject(r.Context(), access, projectID)
	if err != nil {
		h.Log.Error("groups: role resolution failed",
			zap.String("project_id", projectID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
		return authz.AccessContext{}, primitive.NilObjectID, false
	}
	if !canManage {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return authz.AccessContext{}, primitive.NilObjectID, false
	}
	return access, projectID, true
}
