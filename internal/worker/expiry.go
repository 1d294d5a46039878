package worker

import (
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
)

// ExpiryWorker periodically marks overdue offers as expired. Postgres
// has no TTL mechanism, so a cron sweep stands in for one; expired
// offers are kept for analytics rather than deleted.
type ExpiryWorker struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	cron *cron.Cron
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(cfg *config.Config, pool *pgxpool.Pool) *ExpiryWorker {
	return &ExpiryWorker{cfg: cfg, pool: pool, cron: cron.New()}
}

// Start schedules the sweep and runs one immediately to catch offers
// that went overdue while the service was down.
func (w *ExpiryWorker) Start() error {
	if _, err := w.cron.AddFunc(w.cfg.ExpirySweepCron, w.Sweep); err != nil {
		return err
	}
	w.cron.Start()
	go w.Sweep()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *ExpiryWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// Sweep expires every negotiable offer whose deadline has passed.
func (w *ExpiryWorker) Sweep() {
	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := w.pool.Exec(ctx, `
		UPDATE offers
		SET status = 'expired', updated_at = NOW()
		WHERE expires_at < NOW() AND status IN ('pending', 'countered')
	`)
	if err != nil {
		log.Printf("error sweeping expired offers: %v", err)
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("expired %d overdue offers", n)
	}
}
