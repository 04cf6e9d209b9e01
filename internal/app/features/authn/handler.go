// internal/app/features/authn/handler.go
package authn

import (
	invitationstore "github.com/thiraviyalingesh/company-chat/internal/app/store/invitations"
	projectstore "github.com/thiraviyalingesh/company-chat/internal/app/store/projects"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/sms"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the phone + login-code authentication flow and signup
// submission.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	Tokens      *auth.TokenManager
	SMS         sms.Sender
	Users       *userstore.Store
	Projects    *projectstore.Store
	Invitations *invitationstore.Store
}

func NewHandler(db *mongo.Database, tokens *auth.TokenManager, sender sms.Sender, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		AuditLog:    audit,
		Tokens:      tokens,
		SMS:         sender,
		Users:       userstore.New(db),
		Projects:    projectstore.New(db),
		Invitations: invitationstore.New(db),
	}
}
