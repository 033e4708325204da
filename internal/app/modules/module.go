// Package modules contains the dependency modules composed by the
// application root.
package modules

import (
	"context"

	"github.com/riverqueue/river"

	"promptdeck.io/promptdeck/internal/service"
)

// Module represents a dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// RegisterWorkers registers module workers into a shared River worker registry.
	RegisterWorkers(*river.Workers)

	// PeriodicJobs returns the jobs River schedules on behalf of the module.
	PeriodicJobs() []*river.PeriodicJob

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}

// ServiceDepsContributor is implemented by modules that own a service
// collaborator.
type ServiceDepsContributor interface {
	ContributeServiceDeps(*service.Deps)
}
