// internal/app/features/users/handler.go
package users

import (
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the current-user profile and superadmin user
// administration.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	Users       *userstore.Store
	Memberships *membershipstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		AuditLog:    audit,
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
	}
}
