// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CompanyChat.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_secret, etc.
//   - Environment variables: COMPANYCHAT_MONGO_URI, COMPANYCHAT_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "company_chat", Desc: "MongoDB database name"},

	{Name: "token_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "token_ttl", Default: "720h", Desc: "Bearer token lifetime (e.g., 720h for 30 days)"},

	// SMS gateway for login codes (blank base URL logs codes instead)
	{Name: "sms_base_url", Default: "", Desc: "SMS gateway base URL (blank: log codes instead of sending)"},
	{Name: "sms_api_key", Default: "", Desc: "SMS gateway API key"},
	{Name: "sms_from", Default: "CompanyChat", Desc: "SMS sender id"},
	{Name: "sms_timeout", Default: "10s", Desc: "SMS gateway request timeout"},
	{Name: "sms_retries", Default: 2, Desc: "SMS gateway retry count"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// SuperAdmin bootstrap
	{Name: "superadmin_phone", Default: "", Desc: "Phone of the superadmin user (promotes/creates on startup)"},
	{Name: "superadmin_name", Default: "Administrator", Desc: "Display name when creating the superadmin user"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, COMPANYCHAT_* for app), and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COMPANYCHAT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", auth.DefaultTokenTTL),

		SMSBaseURL: appValues.String("sms_base_url"),
		SMSAPIKey:  appValues.String("sms_api_key"),
		SMSFrom:    appValues.String("sms_from"),
		SMSTimeout: appValues.Duration("sms_timeout", 10*time.Second),
		SMSRetries: appValues.Int("sms_retries"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		SuperAdminPhone: appValues.String("superadmin_phone"),
		SuperAdminName:  appValues.String("superadmin_name"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// CompanyChat validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses a weak token
// secret outside dev.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" {
		if _, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, false, logger); err != nil {
			return fmt.Errorf("token_secret unsuitable for production: %w", err)
		}
		if appCfg.SMSBaseURL == "" {
			return fmt.Errorf("sms_base_url must be set in production")
		}
	}

	return nil
}
