package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wms/internal/logger"
)

const DefaultHealthInterval = 4 * time.Second

// Pinger checks server liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthPoller calls a Pinger on a fixed interval and reports each result.
// It has no effect on session state.
type HealthPoller struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	report   func(healthy bool, err error)
	log      *zap.Logger
}

func NewHealthPoller(p Pinger, interval time.Duration, report func(healthy bool, err error), log *zap.Logger) *HealthPoller {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthPoller{
		pinger:   p,
		interval: interval,
		timeout:  interval,
		report:   report,
		log:      log.With(logger.Component("health")),
	}
}

// Run pings immediately and then every interval until ctx is cancelled.
func (h *HealthPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	healthy := true
	for {
		pctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := h.pinger.Ping(pctx)
		cancel()
		if ctx.Err() != nil {
			return nil
		}

		if (err == nil) != healthy {
			healthy = err == nil
			h.log.Info("connectivity changed", zap.Bool("healthy", healthy), zap.Error(err))
		}
		if h.report != nil {
			h.report(err == nil, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
