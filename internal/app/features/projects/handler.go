// internal/app/features/projects/handler.go
package projects

import (
	groupstore "github.com/thiraviyalingesh/company-chat/internal/app/store/groups"
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	projectstore "github.com/thiraviyalingesh/company-chat/internal/app/store/projects"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves project administration.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	Projects    *projectstore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		AuditLog:    audit,
		Projects:    projectstore.New(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
	}
}
