// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// already covers HTTP ports, TLS, logging level, CORS, and so on.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Bearer token configuration
	TokenSecret string        // Secret key for signing bearer tokens (must be strong in production)
	TokenTTL    time.Duration // How long issued tokens stay valid

	// SMS gateway configuration for login-code delivery.
	// When SMSBaseURL is blank, codes are written to the log instead,
	// which is what you want in development.
	SMSBaseURL string
	SMSAPIKey  string
	SMSFrom    string        // Sender id shown to recipients
	SMSTimeout time.Duration // Per-request gateway timeout
	SMSRetries int           // Gateway retry count

	// Audit logging configuration
	AuditLogAuth  string // "all" (db+log), "db", "log", or "off"
	AuditLogAdmin string

	// SuperAdmin bootstrap: when set, the user with this phone is
	// created (or promoted) as an approved superadmin at startup.
	SuperAdminPhone string
	SuperAdminName  string
}
