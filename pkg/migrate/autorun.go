package migrate

import (
	"context"
	"fmt"

	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

// AutoUp applies the embedded migrations on API boot. It only fires in dev with
// JUSTSELL_AUTO_MIGRATE set; other environments run cmd/migrate explicitly.
func AutoUp(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	conn := client.DB()
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	dialect := GooseDialect(conn.Dialector.Name())

	ctx = logg.WithField(ctx, "dialect", dialect)
	if err := Run(ctx, sqlDB, dialect, "", "up"); err != nil {
		return err
	}
	logg.Info(ctx, "schema migrated")
	return nil
}
