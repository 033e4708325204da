package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"promptdeck.io/promptdeck/internal/config"
	"promptdeck.io/promptdeck/internal/infrastructure"
	"promptdeck.io/promptdeck/internal/pkg/worker"
	"promptdeck.io/promptdeck/internal/repository"
	"promptdeck.io/promptdeck/internal/store"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config *config.Config
	DB     *infrastructure.DatabaseClients
	Pools  *worker.Pools
	Store  store.Store
}

// NewInfrastructure initializes DB/pools and the store.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	// Dev-mode: create tables + River queue tables.
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	return &Infrastructure{
		Config: cfg,
		DB:     db,
		Pools:  pools,
		Store:  repository.New(db.DB),
	}, nil
}

// InitRiver creates the River client from the modules' workers and
// periodic jobs. With no workers registered River is left disabled.
func (i *Infrastructure) InitRiver(mods []Module) error {
	if i == nil || i.DB == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}

	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.RegisterWorkers(workers)
		periodic = append(periodic, mod.PeriodicJobs()...)
	}
	if len(periodic) == 0 {
		return nil
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
