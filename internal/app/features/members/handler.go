// internal/app/features/members/handler.go
package members

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/policy/accesspolicy"
	groupstore "github.com/thiraviyalingesh/company-chat/internal/app/store/groups"
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves project membership administration.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	Resolver    *accesspolicy.Resolver
	Users       *userstore.Store
	Memberships *membershipstore.Store
	Groups      *groupstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		AuditLog:    audit,
		Resolver:    accesspolicy.NewResolver(db),
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Groups:      groupstore.New(db),
	}
}

// requireManager resolves the caller's role in the route's project and
// rejects anyone below project admin. Role resolution errors surface as
// 503, never as a denial.
func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) (authz.AccessContext, primitive.ObjectID, bool) {
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

	canManage, err := h.Resolver.CanManageProject(r.Context(), access, projectID)
	if err != nil {
		h.Log.Error("members: role resolution failed",
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
