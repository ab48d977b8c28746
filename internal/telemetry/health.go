package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/Speshl/gotfc/internal/config"
	"github.com/Speshl/gotfc/internal/models"
	"github.com/prometheus/procfs"
	"github.com/rs/zerolog/log"
)

type HealthSink interface {
	PublishHealth(models.Health)
}

// Reporter periodically logs process and network stats from procfs.
type Reporter struct {
	cfg  config.HealthConfig
	sink HealthSink
}

// NewReporter creates a reporter; sink may be nil.
func NewReporter(cfg config.HealthConfig, sink HealthSink) *Reporter {
	return &Reporter{
		cfg:  cfg,
		sink: sink,
	}
}

func (r *Reporter) Start(ctx context.Context) error {
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("invalid health interval %s", r.cfg.Interval)
	}

	p, err := procfs.Self()
	if err != nil {
		log.Warn().Err(err).Msg("procfs could not get process, health reporting disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	healthTicker := time.NewTicker(r.cfg.Interval)
	defer healthTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("reason", ctx.Err().Error()).Msg("stopping health reporter")
			return ctx.Err()
		case <-healthTicker.C:
			health, err := ReadHealth(p, r.cfg.Interface)
			if err != nil {
				log.Warn().Err(err).Msg("failed reading health")
				continue
			}

			log.Info().
				Int("rss", health.ResidentBytes).
				Float64("cpu_s", health.CPUSeconds).
				Int("threads", health.Threads).
				Uint64("rx_err", health.RxErrors).
				Uint64("tx_err", health.TxErrors).
				Msg("healthcheck: healthy")

			if r.sink != nil {
				r.sink.PublishHealth(health)
			}
		}
	}
}

// ReadHealth samples p. A missing network interface leaves the network fields
// empty rather than failing.
func ReadHealth(p procfs.Proc, iface string) (models.Health, error) {
	stat, err := p.Stat()
	if err != nil {
		return models.Health{}, fmt.Errorf("error: failed getting process stat: %w", err)
	}

	health := models.Health{
		ResidentBytes: stat.ResidentMemory(),
		CPUSeconds:    stat.CPUTime(),
		Threads:       stat.NumThreads,
		TimeStamp:     time.Now().UnixMilli(),
	}

	netDev, err := p.NetDev()
	if err != nil {
		return health, fmt.Errorf("error: failed getting netstat: %w", err)
	}

	stats, ok := netDev[iface]
	if !ok {
		log.Debug().Str("interface", iface).Msg("interface not found, skipping network stats")
		return health, nil
	}

	health.Interface = iface
	health.RxPackets = stats.RxPackets
	health.RxErrors = stats.RxErrors
	health.RxDropped = stats.RxDropped
	health.TxPackets = stats.TxPackets
	health.TxErrors = stats.TxErrors
	health.TxDropped = stats.TxDropped
	return health, nil
}
