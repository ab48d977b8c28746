package ticker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrInvalidPeriod = errors.New("tick period must be positive")

// Source advances a Registry once per period, standing in for the board's
// periodic timer interrupt.
type Source struct {
	period   time.Duration
	registry *Registry
}

func NewSource(period time.Duration, registry *Registry) (*Source, error) {
	if period <= 0 {
		return nil, fmt.Errorf("failed creating tick source with period %s: %w", period, ErrInvalidPeriod)
	}
	return &Source{
		period:   period,
		registry: registry,
	}, nil
}

func (s *Source) Period() time.Duration {
	return s.period
}

// Start blocks, advancing the registry every period until ctx is done.
func (s *Source) Start(ctx context.Context) error {
	log.Info().Dur("period", s.period).Int("tickers", s.registry.Len()).Msg("starting tick source")

	tickTicker := time.NewTicker(s.period)
	defer tickTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("reason", ctx.Err().Error()).Msg("stopping tick source")
			return ctx.Err()
		case <-tickTicker.C:
			s.registry.AdvanceAll()
		}
	}
}
