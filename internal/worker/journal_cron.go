package worker

// journal_cron.go
// Background goroutine that periodically deletes journal entries older than
// the configured retention so a long-running till does not grow its sqlite
// file without bound.

import (
	"context"
	"time"

	"tallerpos/internal/repository"

	"github.com/rs/zerolog/log"
)

const defaultPurgeInterval = 6 * time.Hour

// JournalCronConfig holds all dependencies for the purge goroutine.
type JournalCronConfig struct {
	Journal   repository.JournalRepository
	Retention time.Duration
	// Interval between purges; zero means every six hours.
	Interval time.Duration
}

// StartJournalCron purges once immediately, then on every tick until ctx is
// done. A non-positive retention disables the cron.
func StartJournalCron(ctx context.Context, cfg JournalCronConfig) {
	if cfg.Retention <= 0 {
		log.Info().Msg("journal_cron: retention disabled")
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPurgeInterval
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("retention", cfg.Retention).Msg("journal_cron: started")
		purgeJournal(ctx, cfg, time.Now())

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("journal_cron: shutting down")
				return
			case now := <-ticker.C:
				purgeJournal(ctx, cfg, now)
			}
		}
	}()
}

func purgeJournal(ctx context.Context, cfg JournalCronConfig, now time.Time) int64 {
	cutoff := now.Add(-cfg.Retention)
	n, err := cfg.Journal.Purge(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("journal_cron: purge failed")
		return 0
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("journal_cron: purged old entries")
	}
	return n
}
