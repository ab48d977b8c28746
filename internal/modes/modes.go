// Package modes holds the DIP switch selected test modes and the dispatcher
// that runs one of them per main loop iteration.
//
// Every handler is a non-blocking poll. Periodic work is paced by the tick
// registry: a handler checks whether its ticker has passed a threshold, resets
// it and acts.
package modes

import (
	"github.com/Speshl/gotfc/internal/board"
	"github.com/Speshl/gotfc/internal/linescan"
	"github.com/Speshl/gotfc/internal/ticker"
	"github.com/rs/zerolog/log"
)

type Mode uint8

// Selector values, one DIP switch each.
const (
	ModeNone     Mode = 0
	ModeLEDServo Mode = 1
	ModeMotor    Mode = 2
	ModeCamera   Mode = 4
	ModeRace     Mode = 8
)

// Ticker ids.
const (
	ServoTicker   = 0
	LEDTicker     = 1
	NumTickersMin = 2
)

// Thresholds in ticks. At the default 2ms tick: 40ms, 250ms, 22ms.
const (
	ServoUpdateTicks  = 20
	LEDStepTicks      = 125
	CameraUpdateTicks = 10

	// ThresholdScale turns pot 0 into a camera threshold: (pot+1)*1250 spans 0..2500.
	ThresholdScale = 1250
)

func (m Mode) String() string {
	switch m {
	case ModeLEDServo:
		return "led_servo_test"
	case ModeMotor:
		return "motor_test"
	case ModeCamera:
		return "camera_test"
	case ModeRace:
		return "race"
	default:
		return "none"
	}
}

type Printer interface {
	Printf(format string, args ...any)
}

// RaceController runs one iteration of a control law in race mode.
type RaceController interface {
	Race(b board.Board, reg *ticker.Registry)
}

type Harness struct {
	board    board.Board
	registry *ticker.Registry
	term     Printer
	race     RaceController

	thresholdScale float64
	display        DisplayIndex
	lastSelector   uint8
	seenSelector   bool
}

func NewHarness(b board.Board, registry *ticker.Registry, term Printer) *Harness {
	if registry.Len() < NumTickersMin {
		log.Warn().Int("tickers", registry.Len()).Int("want", NumTickersMin).Msg("not enough tickers for test modes")
	}
	return &Harness{
		board:          b,
		registry:       registry,
		term:           term,
		thresholdScale: ThresholdScale,
	}
}

// SetThresholdScale changes how pot 0 maps to the camera threshold. Values
// that are not positive keep the current scale.
func (h *Harness) SetThresholdScale(scale float64) {
	if scale <= 0 {
		log.Warn().Float64("scale", scale).Msg("invalid threshold scale, keeping current")
		return
	}
	h.thresholdScale = scale
}

// SetRaceController attaches the control law run in race mode.
func (h *Harness) SetRaceController(race RaceController) {
	h.race = race
}

func (h *Harness) Display() int {
	return h.display.Value()
}

// Dispatch reads the DIP switch and runs the selected mode once. Values other
// than a single mode bit do nothing.
func (h *Harness) Dispatch() Mode {
	selector := h.board.DIPSwitch()
	if !h.seenSelector || selector != h.lastSelector {
		log.Info().Uint8("dip", selector).Str("mode", Mode(selector).String()).Msg("mode selected")
		h.lastSelector = selector
		h.seenSelector = true
	}

	switch Mode(selector) {
	case ModeLEDServo:
		h.LEDServoTest()
	case ModeMotor:
		h.MotorTest()
	case ModeCamera:
		h.CameraTest()
	case ModeRace:
		h.Race()
	default:
		return ModeNone
	}
	return Mode(selector)
}

// LEDServoTest mirrors the push buttons on LEDs 0 and 3, follows pot 0 with
// servo 0 and steps the LED pattern. Motors stay off.
func (h *Harness) LEDServoTest() {
	h.board.SetBatteryLED(0, h.board.PushButton(0))
	h.board.SetBatteryLED(3, h.board.PushButton(1))

	h.board.SetHBridge(false)

	if h.registry.Elapsed(ServoTicker, ServoUpdateTicks) {
		pot0 := h.board.ReadPot(0)
		h.board.SetServo(0, pot0)
		h.term.Printf("Pot0 = %1.2f\r\n", pot0)
	}

	h.stepLEDPattern()

	h.board.SetMotorPWM(0, 0)
	h.board.SetHBridge(false)
}

// MotorTest drives the motors straight from the pots.
func (h *Harness) MotorTest() {
	h.board.SetHBridge(true)

	pot0 := h.board.ReadPot(0)
	pot1 := h.board.ReadPot(1)
	h.term.Printf("Pot1 = %1.2f\r\n", pot1)
	h.board.SetMotorPWM(pot0, pot1)

	h.stepLEDPattern()
}

// CameraTest prints each new camera row thresholded by pot 0, walking the LED
// pattern backwards once per row.
func (h *Harness) CameraTest() {
	if h.registry.Read(ServoTicker) <= CameraUpdateTicks {
		return
	}
	image, ready := h.board.LineScan()
	if !ready {
		return
	}

	h.registry.Reset(ServoTicker)
	h.board.ClearLineScanReady()

	board.SetBatteryLEDLevel(h.board, h.display.Prev())

	threshold := (h.board.ReadPot(0) + 1) * h.thresholdScale
	h.term.Printf("%s", linescan.Render(image, threshold))
	h.term.Printf("%1.0f\r\n", threshold)
}

// Race runs the attached RaceController, if any.
func (h *Harness) Race() {
	if h.race == nil {
		return
	}
	h.race.Race(h.board, h.registry)
}

func (h *Harness) stepLEDPattern() {
	if h.registry.Elapsed(LEDTicker, LEDStepTicks) {
		board.SetBatteryLEDLevel(h.board, h.display.Next())
	}
}
