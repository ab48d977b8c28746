package app

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Speshl/gotfc/internal/board"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/Speshl/gotfc/internal/modes"
	"github.com/Speshl/gotfc/internal/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func testConfig() config.Config {
	return config.Config{
		TickCfg: config.TickConfig{
			Period:     time.Millisecond,
			NumTickers: config.DefaultNumTickers,
			LoopPeriod: time.Millisecond,
		},
		BoardCfg: config.BoardConfig{
			BoardType: BoardSim,
		},
		CameraCfg: config.CameraConfig{
			ExposureTime:   5 * time.Millisecond,
			ThresholdScale: config.DefaultThresholdScale,
		},
		HealthCfg: config.HealthConfig{
			Interval:  time.Hour,
			Interface: "lo",
		},
	}
}

func runApp(t *testing.T, b board.Board, until func(out string) bool) string {
	t.Helper()

	out := &lockedBuffer{}
	app, err := New(testConfig(), b, terminal.New(out), nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- app.Start()
	}()

	require.Eventually(t, func() bool {
		return until(out.String())
	}, 5*time.Second, 5*time.Millisecond)

	app.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	return out.String()
}

func TestAppRunsServoTest(t *testing.T) {
	fake := board.NewFake()
	fake.SetDIPSwitch(uint8(modes.ModeLEDServo))
	fake.SetPot(0, -0.5)

	out := runApp(t, fake, func(out string) bool {
		return strings.Count(out, "Pot0 = -0.50\r\n") >= 2
	})

	assert.True(t, strings.HasPrefix(out, "Pot0 = -0.50\r\n"))
	assert.Equal(t, -0.5, fake.Servo(0))
	assert.True(t, fake.Stopped())
}

func TestAppRunsSimulatedCamera(t *testing.T) {
	sim := board.NewSim(uint8(modes.ModeCamera), 5*time.Millisecond)

	out := runApp(t, sim, func(out string) bool {
		return strings.Contains(out, "\r\n")
	})

	line := strings.SplitN(out, "\r\n", 2)[0]
	assert.True(t, strings.HasSuffix(line, "  1250"), line)
	assert.Contains(t, line, "|")
	assert.Contains(t, line, "_")
}

func TestNewRejectsBadTickPeriod(t *testing.T) {
	cfg := testConfig()
	cfg.TickCfg.Period = 0

	_, err := New(cfg, board.NewFake(), terminal.New(&bytes.Buffer{}), nil)
	assert.Error(t, err)
}

func TestNewRejectsTooFewTickers(t *testing.T) {
	cfg := testConfig()
	cfg.TickCfg.NumTickers = modes.NumTickersMin - 1

	_, err := New(cfg, board.NewFake(), terminal.New(&bytes.Buffer{}), nil)
	assert.ErrorIs(t, err, ErrTooFewTickers)

	cfg.TickCfg.NumTickers = modes.NumTickersMin
	_, err = New(cfg, board.NewFake(), terminal.New(&bytes.Buffer{}), nil)
	assert.NoError(t, err)
}

type brokenBoard struct {
	*board.Fake
	err error
}

func (b *brokenBoard) Init() error {
	return b.err
}

type closingWriter struct {
	lockedBuffer
	closed bool
}

func (w *closingWriter) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.closed = true
	return nil
}

func TestStartClosesTerminalWhenBoardFails(t *testing.T) {
	initErr := errors.New("no spi")
	b := &brokenBoard{Fake: board.NewFake(), err: initErr}
	port := &closingWriter{}

	app, err := New(testConfig(), b, terminal.NewPort(port), nil)
	require.NoError(t, err)

	err = app.Start()
	assert.ErrorIs(t, err, initErr)
	assert.True(t, port.closed)
	assert.False(t, b.Stopped())
}

func TestNewBoard(t *testing.T) {
	cfg := testConfig()

	b, err := NewBoard(cfg)
	require.NoError(t, err)
	assert.IsType(t, &board.Fake{}, b)

	cfg.BoardCfg.BoardType = BoardPi
	cfg.CommandCfg.CommandDriver = DriverPiPWM
	b, err = NewBoard(cfg)
	require.NoError(t, err)
	assert.IsType(t, &board.Pi{}, b)

	cfg.BoardCfg.BoardType = "arduino"
	_, err = NewBoard(cfg)
	assert.Error(t, err)
}

func TestNewCommandDriver(t *testing.T) {
	_, err := NewCommandDriver(config.CommandConfig{CommandDriver: DriverPCA9685})
	assert.NoError(t, err)

	_, err = NewCommandDriver(config.CommandConfig{CommandDriver: "servoblaster"})
	assert.Error(t, err)
}
