package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

const (
	poolMonitorInterval = 5 * time.Second
	poolWaitWarnAfter   = 50 * time.Millisecond
)

// poolMonitor logs when requests had to wait for a pooled connection.
type poolMonitor struct {
	logger   *slog.Logger
	stats    func() sql.DBStats
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func newPoolMonitor(logger *slog.Logger, sqlDB *sql.DB) *poolMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &poolMonitor{
		logger:   logger,
		stats:    sqlDB.Stats,
		interval: poolMonitorInterval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *poolMonitor) Start() { go m.run() }

func (m *poolMonitor) Stop() { m.cancel() }

func (m *poolMonitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	prev := m.stats()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			cur := m.stats()
			m.report(prev, cur)
			prev = cur
		}
	}
}

// report compares two consecutive snapshots and logs any new waits.
func (m *poolMonitor) report(prev, cur sql.DBStats) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return
	}
	waited := cur.WaitDuration - prev.WaitDuration

	level, msg := slog.LevelDebug, "Postgres pool wait observed"
	if waited >= poolWaitWarnAfter {
		level, msg = slog.LevelWarn, "Postgres pool wait detected"
	}

	m.logger.LogAttrs(m.ctx, level, msg,
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("openConns", cur.OpenConnections),
		slog.Int("inUseConns", cur.InUse),
	)
}
