// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	userstore "github.com/fixtrack/fixtrack/internal/app/store/users"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// FixTrack uses it to apply timeout overrides and promote the
// configured admin account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied from environment", zap.Int("count", n))
	}

	if appCfg.AdminEmail != "" {
		users := userstore.New(deps.MongoDatabase, logger)
		if err := users.EnsureAdmin(ctx, appCfg.AdminEmail); err != nil {
			return err
		}
	}

	return nil
}
