// Package board abstracts the race car's I/O: DIP switch, push buttons,
// battery LEDs, H-bridge enable, pots, steering servos, drive motors and the
// linescan camera.
//
// Reads and writes never fail from the caller's point of view. Hardware errors
// are logged by the implementation and the call carries on.
package board

import (
	"context"

	"github.com/Speshl/gotfc/internal/config"
)

const (
	NumBatteryLEDs = config.NumBatteryLEDs
	NumPushButtons = config.NumPushButtons
	NumPots        = 2
	NumServos      = 2
	MaxLEDLevel    = NumBatteryLEDs
)

type Board interface {
	Init() error
	// Start runs background acquisition (camera exposure) until ctx is done.
	Start(ctx context.Context) error
	Stop() error

	DIPSwitch() uint8
	PushButton(n int) bool
	SetBatteryLED(n int, on bool)
	SetHBridge(enabled bool)

	// ReadPot returns pot ch in [-1, 1].
	ReadPot(ch int) float64
	// SetServo drives servo ch to pos in [-1, 1].
	SetServo(ch int, pos float64)
	// SetMotorPWM drives both motors, a and b in [-1, 1].
	SetMotorPWM(a, b float64)

	// LineScan returns the latest camera row and whether it is new.
	LineScan() ([]uint16, bool)
	ClearLineScanReady()
}

type LEDSetter interface {
	SetBatteryLED(n int, on bool)
}

// SetBatteryLEDLevel shows level as a bar graph: 0 is all off, level k lights
// LEDs 0..k-1. Levels above MaxLEDLevel light all of them.
func SetBatteryLEDLevel(leds LEDSetter, level int) {
	for i := 0; i < NumBatteryLEDs; i++ {
		leds.SetBatteryLED(i, i < level)
	}
}

// BuildPinMasks creates count masks each with only 1 bit. 1,2,4,8...
func BuildPinMasks(count int) []uint8 {
	masks := make([]uint8, count)
	for i := 0; i < count; i++ {
		masks[i] = 1 << i
	}
	return masks
}

// PackBits sets mask i in the result for every true states[i].
func PackBits(states []bool, masks []uint8) uint8 {
	value := uint8(0)
	for i := range masks {
		if i < len(states) && states[i] {
			value |= masks[i]
		}
	}
	return value
}
