package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
)

// warmerTimeout bounds one warming pass.
const warmerTimeout = 2 * time.Minute

// warmer periodically re-issues the high-fanout market reads so their cache
// entries stay warm. It goes through the same service paths as a request,
// so freshness checks and stale-serve behave identically.
type warmer struct {
	cron   *cron.Cron
	market interfaces.MarketService
	logger *common.Logger
}

func newWarmer(schedule string, marketSvc interfaces.MarketService, logger *common.Logger) (*warmer, error) {
	w := &warmer{
		cron:   cron.New(),
		market: marketSvc,
		logger: logger,
	}
	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *warmer) start() {
	w.cron.Start()
	w.logger.Info().Msg("Cache warmer started")
}

func (w *warmer) stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), warmerTimeout)
	defer cancel()

	start := time.Now()

	if _, _, err := w.market.GetHeatmap(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("Warmer heatmap refresh failed")
	}
	if _, _, err := w.market.GetTrending(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("Warmer trending refresh failed")
	}
	if _, _, err := w.market.GetSP500PE(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("Warmer S&P 500 P/E refresh failed")
	}

	w.logger.Debug().Dur("duration", time.Since(start)).Msg("Cache warming pass complete")
}
