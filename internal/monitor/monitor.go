// Package monitor runs a cron-scheduled job that logs a periodic snapshot
// of buffer-pool occupancy and lock-manager pressure, the observability
// counterpart to the teacher's storage.Scheduler (internal/storage/scheduler.go),
// narrowed from general SQL-job scheduling down to one fixed stats job.
package monitor

import (
	"github.com/robfig/cron/v3"

	"minidb/internal/opslog"
	"minidb/internal/storagepage"
	"minidb/internal/txn"
)

// PoolStatter is the subset of *storagepage.BufferPool the monitor reads.
type PoolStatter interface {
	Stats() storagepage.Stats
}

// LockStatter is the subset of *txn.LockManager the monitor reads.
type LockStatter interface {
	LockedRIDCount() int
}

// Monitor periodically logs the occupancy of a set of named buffer pools
// and the pressure on a lock manager.
type Monitor struct {
	cron    *cron.Cron
	log     *opslog.Logger
	pools   map[string]PoolStatter
	lockMgr LockStatter
}

// New returns a Monitor that logs through logger. Register pools with
// AddPool before calling Start.
func New(logger *opslog.Logger, lockMgr LockStatter) *Monitor {
	return &Monitor{
		cron:    cron.New(cron.WithSeconds()),
		log:     logger,
		pools:   make(map[string]PoolStatter),
		lockMgr: lockMgr,
	}
}

// AddPool registers a buffer pool under name for the periodic snapshot.
func (m *Monitor) AddPool(name string, pool PoolStatter) {
	m.pools[name] = pool
}

// Start schedules the snapshot job at the given cron spec (e.g.
// "*/30 * * * * *" for every 30 seconds) and starts the cron runtime.
func (m *Monitor) Start(spec string) error {
	if _, err := m.cron.AddFunc(spec, m.snapshot); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the cron runtime, waiting for any in-flight job to finish.
func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Monitor) snapshot() {
	for name, pool := range m.pools {
		s := pool.Stats()
		m.log.Info("pool %s: %d/%d resident, %d pinned, %d dirty", name, s.Resident, s.Capacity, s.Pinned, s.Dirty)
	}
	if m.lockMgr != nil {
		m.log.Info("lock manager: %d locked RIDs", m.lockMgr.LockedRIDCount())
	}
}

var _ LockStatter = (*txn.LockManager)(nil)
