// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/normalize"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/timeouts"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// CompanyChat uses it to guarantee a superadmin account exists so the
// service is administrable from first boot.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminPhone == "" {
		logger.Warn("no superadmin_phone configured, skipping superadmin bootstrap")
		return nil
	}
	return ensureSuperAdmin(ctx, appCfg, deps, logger)
}

func ensureSuperAdmin(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	store := userstore.New(deps.ChatMongoDatabase)
	phone := normalize.Phone(appCfg.SuperAdminPhone)
	if phone == "" {
		return fmt.Errorf("superadmin_phone %q is not a usable phone number", appCfg.SuperAdminPhone)
	}

	existing, err := store.GetByPhone(opCtx, phone)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		return fmt.Errorf("superadmin lookup: %w", err)
	}

	if existing != nil {
		if existing.GlobalRole == models.GlobalRoleSuperAdmin {
			return nil
		}
		if err := store.Promote(opCtx, existing.ID, models.GlobalRoleSuperAdmin); err != nil {
			return fmt.Errorf("superadmin promote: %w", err)
		}
		logger.Info("promoted existing user to superadmin",
			zap.String("user_id", existing.ID.Hex()))
		return nil
	}

	created, err := store.Create(opCtx, models.User{
		FullName:   appCfg.SuperAdminName,
		Phone:      phone,
		GlobalRole: models.GlobalRoleSuperAdmin,
		IsApproved: true,
	})
	if err != nil {
		return fmt.Errorf("superadmin create: %w", err)
	}
	logger.Info("created superadmin user", zap.String("user_id", created.ID.Hex()))
	return nil
}
