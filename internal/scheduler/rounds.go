package scheduler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Shamsear/ssleague-sub005/internal/auction"
	"github.com/Shamsear/ssleague-sub005/internal/config"
)

// RegisterRoundJobs wires the two background sweeps the finalization
// workflow relies on: moving overdue manual rounds into
// expired_pending_finalization, and reclaiming abandoned round leases.
func RegisterRoundJobs(cfg *config.Config, engine *auction.Engine, locks *auction.LockManager) error {
	if cfg == nil {
		return errors.New("round jobs require configuration")
	}
	if engine == nil || locks == nil {
		return errors.New("round jobs require an engine and a lock manager")
	}

	if _, err := AddJob("round-expiry-sweep", cfg.Auction.ExpirySweepCron, func() {
		expired, err := engine.ExpireDueRounds(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("Round expiry sweep failed")
			return
		}
		if expired > 0 {
			log.Info().Int("expired", expired).Msg("Round expiry sweep completed")
		}
	}); err != nil {
		return err
	}

	if _, err := AddJob("round-lock-reaper", cfg.Auction.LockReaperCron, func() {
		if _, err := locks.ReapStale(context.Background()); err != nil {
			log.Error().Err(err).Msg("Round lock reaper failed")
		}
	}); err != nil {
		return err
	}

	return nil
}
