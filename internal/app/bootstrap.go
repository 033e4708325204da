// Package app is the composition root. Bootstrap stays orchestration-only;
// construction details live in the modules package.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"promptdeck.io/promptdeck/internal/api/handlers"
	"promptdeck.io/promptdeck/internal/app/modules"
	"promptdeck.io/promptdeck/internal/config"
	"promptdeck.io/promptdeck/internal/infrastructure"
	"promptdeck.io/promptdeck/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	allModules := []modules.Module{
		modules.NewGovernanceModule(infra),
	}
	if err := infra.InitRiver(allModules); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	services := modules.NewServices(cfg, infra.Store, allModules)
	server := handlers.NewServer(handlers.ServerDeps{
		Services: services,
		DB:       infra.DB,
	})

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, services.Users, modules.NewJWTConfig(cfg)),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Modules: allModules,
	}, nil
}
