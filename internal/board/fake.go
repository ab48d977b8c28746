package board

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Speshl/gotfc/internal/linescan"
	"github.com/rs/zerolog/log"
)

const (
	simLineWidth = 6
	simDark      = 300
	simLight     = 3200
)

var _ Board = (*Fake)(nil)

// Fake is an in-memory board. Tests drive its inputs and inspect its outputs;
// with a sim exposure set it also produces a synthetic camera row with a dark
// line drifting across it so the harness can run on a bench machine.
type Fake struct {
	lock sync.Mutex

	dip     uint8
	buttons [NumPushButtons]bool
	pots    [NumPots]float64

	leds    [NumBatteryLEDs]bool
	hbridge bool
	servos  [NumServos]float64
	motorA  float64
	motorB  float64

	image     []uint16
	ready     bool
	simPeriod time.Duration
	simFrame  int

	servoWrites int
	motorWrites int
	stopped     bool
}

func NewFake() *Fake {
	return &Fake{
		image: make([]uint16, linescan.NumPixels),
	}
}

// NewSim returns a Fake that reports selector on its DIP switch and generates
// a camera row every exposure.
func NewSim(selector uint8, exposure time.Duration) *Fake {
	f := NewFake()
	f.dip = selector
	f.simPeriod = exposure
	return f
}

func (f *Fake) Init() error {
	log.Info().Uint8("dip", f.DIPSwitch()).Msg("fake board ready")
	return nil
}

func (f *Fake) Start(ctx context.Context) error {
	if f.simPeriod <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	simTicker := time.NewTicker(f.simPeriod)
	defer simTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("reason", ctx.Err().Error()).Msg("stopping simulated camera")
			return ctx.Err()
		case <-simTicker.C:
			f.SetLineScan(f.nextSimFrame())
		}
	}
}

func (f *Fake) Stop() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.motorA, f.motorB = 0, 0
	f.hbridge = false
	f.stopped = true
	return nil
}

func (f *Fake) nextSimFrame() []uint16 {
	f.lock.Lock()
	f.simFrame++
	frame := f.simFrame
	f.lock.Unlock()

	center := float64(linescan.NumPixels)/2 + 40*math.Sin(float64(frame)/50)
	image := make([]uint16, linescan.NumPixels)
	for i := range image {
		if math.Abs(float64(i)-center) < simLineWidth {
			image[i] = simDark
		} else {
			image[i] = simLight
		}
	}
	return image
}

func (f *Fake) DIPSwitch() uint8 {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.dip
}

func (f *Fake) PushButton(n int) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if n < 0 || n >= NumPushButtons {
		return false
	}
	return f.buttons[n]
}

func (f *Fake) SetBatteryLED(n int, on bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if n < 0 || n >= NumBatteryLEDs {
		return
	}
	f.leds[n] = on
}

func (f *Fake) SetHBridge(enabled bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.hbridge = enabled
}

func (f *Fake) ReadPot(ch int) float64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	if ch < 0 || ch >= NumPots {
		return 0
	}
	return f.pots[ch]
}

func (f *Fake) SetServo(ch int, pos float64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if ch < 0 || ch >= NumServos {
		return
	}
	f.servos[ch] = clamp(pos)
	f.servoWrites++
}

func (f *Fake) SetMotorPWM(a, b float64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.motorA = clamp(a)
	f.motorB = clamp(b)
	f.motorWrites++
}

func (f *Fake) LineScan() ([]uint16, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	image := make([]uint16, len(f.image))
	copy(image, f.image)
	return image, f.ready
}

func (f *Fake) ClearLineScanReady() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.ready = false
}

// Input side, for tests and the simulator.

func (f *Fake) SetDIPSwitch(value uint8) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.dip = value
}

func (f *Fake) SetPushButton(n int, pressed bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.buttons[n] = pressed
}

func (f *Fake) SetPot(ch int, value float64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.pots[ch] = value
}

// SetLineScan replaces the camera row and marks it ready.
func (f *Fake) SetLineScan(image []uint16) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.image = append(f.image[:0], image...)
	f.ready = true
}

// Output side.

func (f *Fake) LED(n int) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.leds[n]
}

// LEDLevel counts the lit LEDs.
func (f *Fake) LEDLevel() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	level := 0
	for i := range f.leds {
		if f.leds[i] {
			level++
		}
	}
	return level
}

func (f *Fake) HBridge() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.hbridge
}

func (f *Fake) Servo(ch int) float64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.servos[ch]
}

func (f *Fake) Motors() (float64, float64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.motorA, f.motorB
}

func (f *Fake) ServoWrites() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.servoWrites
}

func (f *Fake) MotorWrites() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.motorWrites
}

func (f *Fake) Stopped() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.stopped
}

func clamp(value float64) float64 {
	return math.Max(MinOutput, math.Min(MaxOutput, value))
}
