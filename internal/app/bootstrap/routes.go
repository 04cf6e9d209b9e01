// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	auditviewfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/auditview"
	authnfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/authn"
	groupsfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/groups"
	healthfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/health"
	membersfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/members"
	messagesfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/messages"
	projectsfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/projects"
	signupsfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/signups"
	usersfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/users"
	auditstore "github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/sms"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. CompanyChat wires the bearer
// token manager, the SMS sender, and the audit logger, then mounts the
// JSON API feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Weak token secrets are tolerated outside production only.
	allowWeak := coreCfg.Env != "prod"
	tokenMgr, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, allowWeak, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user fetch per request: role changes, blocks, and
	// rejections take effect immediately, not at token expiry.
	tokenMgr.SetUserFetcher(userstore.NewFetcher(deps.ChatMongoDatabase))

	var sender sms.Sender
	if appCfg.SMSBaseURL != "" {
		sender = sms.NewGateway(sms.Config{
			BaseURL:    appCfg.SMSBaseURL,
			APIKey:     appCfg.SMSAPIKey,
			From:       appCfg.SMSFrom,
			Timeout:    appCfg.SMSTimeout,
			RetryCount: appCfg.SMSRetries,
		}, logger)
	} else {
		logger.Warn("no sms gateway configured, login codes go to the log")
		sender = sms.NewLogSender(logger)
	}

	auditLog := auditlog.New(auditstore.New(deps.ChatMongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// Global auth middleware: loads the token's user into context so
	// handlers can use auth.CurrentUser(r).
	r.Use(tokenMgr.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ChatMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication and signup
	authnHandler := authnfeature.NewHandler(deps.ChatMongoDatabase, tokenMgr, sender, auditLog, logger)
	r.Mount("/auth", authnfeature.Routes(authnHandler))

	// Signup approval queue
	signupsHandler := signupsfeature.NewHandler(deps.ChatMongoDatabase, auditLog, logger)
	r.Mount("/signups", signupsfeature.Routes(signupsHandler))

	// User profile and administration
	usersHandler := usersfeature.NewHandler(deps.ChatMongoDatabase, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Projects, their members, and their groups
	projectsHandler := projectsfeature.NewHandler(deps.ChatMongoDatabase, auditLog, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler))

	membersHandler := membersfeature.NewHandler(deps.ChatMongoDatabase, auditLog, logger)
	r.Mount("/projects/{projectID}/members", membersfeature.Routes(membersHandler))

	groupsHandler := groupsfeature.NewHandler(deps.ChatMongoDatabase, auditLog, logger)
	r.Mount("/projects/{projectID}/groups", groupsfeature.Routes(groupsHandler))

	// Messaging
	messagesHandler := messagesfeature.NewHandler(deps.ChatMongoDatabase, logger)
	r.Mount("/groups/{groupID}/messages", messagesfeature.Routes(messagesHandler))

	// Audit trail
	auditHandler := auditviewfeature.NewHandler(deps.ChatMongoDatabase, logger)
	r.Mount("/audit", auditviewfeature.Routes(auditHandler))

	return r, nil
}
