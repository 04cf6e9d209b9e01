// internal/app/features/signups/handler.go
package signups

import (
	invitationstore "github.com/thiraviyalingesh/company-chat/internal/app/store/invitations"
	projectstore "github.com/thiraviyalingesh/company-chat/internal/app/store/projects"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/workflow/approval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the pending-signup queue for superadmins.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Engine      *approval.Engine
	Users       *userstore.Store
	Projects    *projectstore.Store
	Invitations *invitationstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Engine:      approval.New(db, audit, logger),
		Users:       userstore.New(db),
		Projects:    projectstore.New(db),
		Invitations: invitationstore.New(db),
	}
}
