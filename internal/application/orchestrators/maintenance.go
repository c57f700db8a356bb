package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// ScopePruner deletes device scopes that have not been written since cutoff.
type ScopePruner interface {
	PruneScopes(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceDeps holds dependencies for periodic maintenance.
type MaintenanceDeps struct {
	Registry *TrackingRegistry
	Pruner   ScopePruner
	Now      func() time.Time
}

// MaintenanceConfig holds configuration for the maintenance scheduler.
type MaintenanceConfig struct {
	Interval        time.Duration // how often maintenance runs
	SessionIdleTTL  time.Duration // idle sessions older than this are dropped
	RunningTTL      time.Duration // running sessions unused this long are ended; 0 keeps them
	DeviceRetention time.Duration // 0 keeps device data forever
}

// ExecuteMaintenance sweeps idle tracking sessions and prunes expired device data.
// PRE: deps.Registry is non-nil
// POST: expired sessions are dropped; scopes idle past DeviceRetention are deleted
func ExecuteMaintenance(ctx context.Context, deps MaintenanceDeps, cfg MaintenanceConfig) error {
	deps.Registry.Sweep(cfg.SessionIdleTTL, cfg.RunningTTL)

	if deps.Pruner == nil || cfg.DeviceRetention <= 0 {
		return nil
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	removed, err := deps.Pruner.PruneScopes(ctx, now().Add(-cfg.DeviceRetention))
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("device_prune", "entries_removed", removed, "retention", cfg.DeviceRetention.String())
	}
	return nil
}

// StartMaintenanceScheduler starts a background goroutine that periodically runs ExecuteMaintenance.
// PRE: Context is valid, deps are initialized, cfg.Interval > 0
// POST: Goroutine started, returns cancel function
func StartMaintenanceScheduler(ctx context.Context, deps MaintenanceDeps, cfg MaintenanceConfig) func() {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ExecuteMaintenance(ctx, deps, cfg); err != nil {
					slog.Error("maintenance_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
