package modules

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"promptdeck.io/promptdeck/internal/governance/audit"
	"promptdeck.io/promptdeck/internal/jobs"
	"promptdeck.io/promptdeck/internal/pkg/worker"
	"promptdeck.io/promptdeck/internal/service"
	"promptdeck.io/promptdeck/internal/store"
)

// GovernanceModule owns the audit trail and its retention job. When audit
// is disabled it contributes nothing.
type GovernanceModule struct {
	store     store.Audit
	logger    *audit.Logger
	retention time.Duration
}

// NewGovernanceModule builds the module from shared infrastructure.
func NewGovernanceModule(infra *Infrastructure) *GovernanceModule {
	cfg := infra.Config.Audit
	return newGovernanceModule(infra.Store, infra.Pools, cfg.Enabled, cfg.Retention)
}

func newGovernanceModule(s store.Audit, pools *worker.Pools, enabled bool, retention time.Duration) *GovernanceModule {
	if !enabled || s == nil {
		return &GovernanceModule{}
	}
	return &GovernanceModule{
		store:     s,
		logger:    audit.NewLogger(s, pools),
		retention: retention,
	}
}

func (m *GovernanceModule) Name() string { return "governance" }

func (m *GovernanceModule) ContributeServiceDeps(deps *service.Deps) {
	if m.logger != nil {
		deps.Audit = m.logger
	}
}

func (m *GovernanceModule) RegisterWorkers(workers *river.Workers) {
	if m.store == nil {
		return
	}
	river.AddWorker(workers, jobs.NewAuditCleanupWorker(m.store, m.retention))
}

func (m *GovernanceModule) PeriodicJobs() []*river.PeriodicJob {
	if m.store == nil {
		return nil
	}
	return []*river.PeriodicJob{jobs.AuditCleanupPeriodicJob()}
}

func (m *GovernanceModule) Shutdown(context.Context) error { return nil }
