package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/migrations"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
	"github.com/pressly/goose/v3"
)

const Version = "1.0.0"

// VersionFunc reports the schema version currently applied to the database.
type VersionFunc func(ctx context.Context) (int64, error)

// GooseVersion reads the applied version from goose's version table.
func GooseVersion(db *sql.DB) VersionFunc {
	return func(ctx context.Context) (int64, error) {
		return goose.GetDBVersionContext(ctx, db)
	}
}

// SchemaCheck fails while the database is behind the embedded migrations.
func SchemaCheck(current VersionFunc, want int64) health.CheckFunc {
	return func(ctx context.Context) error {
		version, err := current(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		if version < want {
			return fmt.Errorf("schema version %d is behind %d", version, want)
		}

		return nil
	}
}

func NewHealthHandler(cfg *config.Config, schemaVersion VersionFunc) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: Version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      "database",
				Timeout:   3 * time.Second,
				SkipOnErr: false,
				Check: postgres.New(postgres.Config{
					DSN: cfg.Database.GetDSN(),
				}),
			},
			health.Config{
				Name:      "schema",
				Timeout:   3 * time.Second,
				SkipOnErr: false,
				Check:     SchemaCheck(schemaVersion, migrations.LatestVersion),
			},
			health.Config{
				Name:    "redis",
				Timeout: 2 * time.Second,
				// the cache and login limiter degrade without redis; carts and sessions do not
				SkipOnErr: true,
				Check: healthRedis.New(healthRedis.Config{
					DSN: cfg.RedisConnect.GetDSN(),
				}),
			},
		),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
