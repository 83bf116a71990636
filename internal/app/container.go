package app

import (
	"context"
	"log"
	"time"

	"linklens/internal/config"
	"linklens/internal/database"
	"linklens/internal/database/migration"
	dbpostgres "linklens/internal/database/postgres"
	"linklens/internal/infrastructure/cache"
)

type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Logger *log.Logger
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config: cfg,
		DB:     db,
		Cache:  cache.NewRedis(logger),
		Logger: logger,
	}, nil
}

// Migrate applies pending SQL migrations. Both binaries call this on
// startup; the runner's advisory lock keeps them from racing.
func (c *Container) Migrate(ctx context.Context) error {
	r := migration.Runner{Dir: c.Config.Database.MigrationsDir}
	return r.Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
