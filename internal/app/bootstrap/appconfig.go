// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds FixTrack-specific configuration loaded alongside the
// WAFFLE core config.
type AppConfig struct {
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	SessionKey    string
	SessionName   string
	SessionDomain string

	// Admin bootstrap
	AdminEmail string

	// Audit logging: "all", "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string
}
