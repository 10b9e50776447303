// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	customersfeature "github.com/fixtrack/fixtrack/internal/app/features/customers"
	healthfeature "github.com/fixtrack/fixtrack/internal/app/features/health"
	loginfeature "github.com/fixtrack/fixtrack/internal/app/features/login"
	logoutfeature "github.com/fixtrack/fixtrack/internal/app/features/logout"
	productsfeature "github.com/fixtrack/fixtrack/internal/app/features/products"
	registerfeature "github.com/fixtrack/fixtrack/internal/app/features/register"
	repairsfeature "github.com/fixtrack/fixtrack/internal/app/features/repairs"
	techniciansfeature "github.com/fixtrack/fixtrack/internal/app/features/technicians"
	userinfofeature "github.com/fixtrack/fixtrack/internal/app/features/userinfo"
	usersfeature "github.com/fixtrack/fixtrack/internal/app/features/users"
	auditstore "github.com/fixtrack/fixtrack/internal/app/store/audit"
	userstore "github.com/fixtrack/fixtrack/internal/app/store/users"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. FixTrack mounts the auth
// gateway endpoints plus one JSON CRUD router per collection:
// customers, repairs, products, and technicians.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data
	// on each request. Role changes and disabled accounts take effect
	// immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Audit logger shared by the auth gateway and the CRUD features.
	audit := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	loginLimiter := ratelimit.NewLoginLimiter()
	registerLimiter := ratelimit.New(5, time.Minute)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Auth gateway
	registerHandler := registerfeature.NewHandler(deps.MongoDatabase, sessionMgr, registerLimiter, audit, appCfg.AdminEmail, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, loginLimiter, audit, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	userinfoHandler := userinfofeature.NewHandler(logger)
	r.Mount("/userinfo", userinfofeature.Routes(userinfoHandler))

	// Account records
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Shop collections
	customersHandler := customersfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/customers", customersfeature.Routes(customersHandler))

	repairsHandler := repairsfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/repairs", repairsfeature.Routes(repairsHandler))

	productsHandler := productsfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/products", productsfeature.Routes(productsHandler))

	techniciansHandler := techniciansfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/technicians", techniciansfeature.Routes(techniciansHandler))

	return r, nil
}
