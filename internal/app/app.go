package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Speshl/gotfc/internal/board"
	"github.com/Speshl/gotfc/internal/command"
	pca9685 "github.com/Speshl/gotfc/internal/command/pca9685"
	"github.com/Speshl/gotfc/internal/command/pipwm"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/Speshl/gotfc/internal/modes"
	"github.com/Speshl/gotfc/internal/telemetry"
	"github.com/Speshl/gotfc/internal/terminal"
	"github.com/Speshl/gotfc/internal/ticker"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	BoardPi  = "pi"
	BoardSim = "sim"

	DriverPCA9685 = "pca9685"
	DriverPiPWM   = "pipwm"
)

var ErrTooFewTickers = errors.New("not enough tickers for test modes")

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	Cfg config.Config

	board     board.Board
	term      *terminal.Terminal
	registry  *ticker.Registry
	source    *ticker.Source
	harness   *modes.Harness
	telemetry *telemetry.Client
	health    *telemetry.Reporter
}

// NewApp builds the board, terminal and telemetry described by cfg.
func NewApp(cfg config.Config) (*App, error) {
	b, err := NewBoard(cfg)
	if err != nil {
		return nil, err
	}

	term, err := terminal.Open(cfg.TerminalCfg)
	if err != nil {
		return nil, err
	}

	var client *telemetry.Client
	if cfg.TelemetryCfg.Enabled {
		client, err = telemetry.NewSocketClient(cfg.TelemetryCfg)
		if err != nil {
			term.Close()
			return nil, err
		}
	} else {
		log.Info().Msg("telemetry disabled")
	}

	app, err := New(cfg, b, term, client)
	if err != nil {
		term.Close()
		return nil, err
	}
	return app, nil
}

// New wires the harness around an existing board and terminal. client may be nil.
func New(cfg config.Config, b board.Board, term *terminal.Terminal, client *telemetry.Client) (*App, error) {
	if cfg.TickCfg.NumTickers < modes.NumTickersMin {
		return nil, fmt.Errorf("%d tickers configured, need at least %d: %w", cfg.TickCfg.NumTickers, modes.NumTickersMin, ErrTooFewTickers)
	}

	registry := ticker.NewRegistry(cfg.TickCfg.NumTickers)
	source, err := ticker.NewSource(cfg.TickCfg.Period, registry)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:       ctx,
		ctxCancel: cancel,
		Cfg:       cfg,
		board:     b,
		term:      term,
		registry:  registry,
		source:    source,
		harness:   modes.NewHarness(b, registry, term),
		telemetry: client,
	}
	app.harness.SetThresholdScale(cfg.CameraCfg.ThresholdScale)

	if client != nil {
		term.SetMirror(client)
		app.health = telemetry.NewReporter(cfg.HealthCfg, client)
	} else {
		app.health = telemetry.NewReporter(cfg.HealthCfg, nil)
	}
	return app, nil
}

func NewBoard(cfg config.Config) (board.Board, error) {
	switch cfg.BoardCfg.BoardType {
	case BoardSim:
		log.Info().Int("dip", cfg.BoardCfg.SimSelector).Msg("using simulated board")
		return board.NewSim(uint8(cfg.BoardCfg.SimSelector), cfg.CameraCfg.ExposureTime), nil
	case BoardPi:
		outputs, err := NewCommandDriver(cfg.CommandCfg)
		if err != nil {
			return nil, err
		}
		return board.NewPi(cfg.BoardCfg, cfg.ADCCfg, cfg.CameraCfg, outputs), nil
	default:
		return nil, fmt.Errorf("unsupported board type: %s", cfg.BoardCfg.BoardType)
	}
}

func NewCommandDriver(cfg config.CommandConfig) (command.Driver, error) {
	switch cfg.CommandDriver {
	case DriverPCA9685:
		return pca9685.NewCommand(cfg), nil
	case DriverPiPWM:
		return pipwm.NewCommand(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported output driver: %s", cfg.CommandDriver)
	}
}

func (a *App) Harness() *modes.Harness {
	return a.harness
}

// Stop asks a running Start to return.
func (a *App) Stop() {
	a.ctxCancel()
}

func (a *App) Start() error {
	log.Info().Msg("starting...")

	defer func() {
		err := a.term.Close()
		if err != nil {
			log.Error().Err(err).Msg("failed closing terminal")
		}
	}()

	err := a.board.Init()
	if err != nil {
		return fmt.Errorf("error initializing board: %w", err)
	}

	defer func() {
		log.Info().Msg("stopping...")
		err := a.board.Stop()
		if err != nil {
			log.Error().Err(err).Msg("failed stopping board")
		}
	}()

	group, groupCtx := errgroup.WithContext(a.ctx)

	//kill listener
	group.Go(func() error {
		signalChannel := make(chan os.Signal, 1)
		signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signalChannel)
		select {
		case sig := <-signalChannel:
			log.Info().Str("signal", sig.String()).Msg("received signal")
			a.ctxCancel()
			return groupCtx.Err()
		case <-groupCtx.Done():
			log.Debug().Msg("closing signal goroutine")
			return groupCtx.Err()
		}
	})

	group.Go(func() error {
		return a.source.Start(groupCtx)
	})

	//camera exposure / simulation
	group.Go(func() error {
		return a.board.Start(groupCtx)
	})

	if a.telemetry != nil {
		group.Go(func() error {
			return a.telemetry.Start(groupCtx)
		})
	}

	group.Go(func() error {
		return a.health.Start(groupCtx)
	})

	group.Go(func() error {
		return a.mainLoop(groupCtx)
	})

	err = group.Wait()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("context was cancelled")
			return nil
		} else {
			return fmt.Errorf("harness stopping due to error - %w", err)
		}
	}

	log.Info().Msg("shutting down")
	return nil
}

// mainLoop runs the dispatcher forever, the way the board's superloop did.
func (a *App) mainLoop(ctx context.Context) error {
	log.Info().Dur("loop_period", a.Cfg.TickCfg.LoopPeriod).Msg("starting main loop")

	var loopTicker *time.Ticker
	if a.Cfg.TickCfg.LoopPeriod > 0 {
		loopTicker = time.NewTicker(a.Cfg.TickCfg.LoopPeriod)
		defer loopTicker.Stop()
	}

	for {
		a.harness.Dispatch()

		if loopTicker == nil {
			select {
			case <-ctx.Done():
				log.Info().Str("reason", ctx.Err().Error()).Msg("stopping main loop")
				return ctx.Err()
			default:
				runtime.Gosched()
			}
			continue
		}

		select {
		case <-ctx.Done():
			log.Info().Str("reason", ctx.Err().Error()).Msg("stopping main loop")
			return ctx.Err()
		case <-loopTicker.C:
		}
	}
}
