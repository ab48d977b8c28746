package board

import (
	"context"
	"fmt"

	"github.com/Speshl/gotfc/internal/adc"
	"github.com/Speshl/gotfc/internal/command"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/Speshl/gotfc/internal/linescan"
	"github.com/rs/zerolog/log"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	MinOutput = -1.0
	MaxOutput = 1.0
)

var _ Board = (*Pi)(nil)

var servoNames = []string{command.NameServo0, command.NameServo1}

// Pi is the shield wired to a Raspberry Pi header: GPIO through go-rpio, PWM
// outputs through a command.Driver and analog inputs through an MCP3208.
type Pi struct {
	cfg    config.BoardConfig
	adcCfg config.ADCConfig
	camCfg config.CameraConfig

	dipPins    []rpio.Pin
	dipMasks   []uint8
	buttonPins []rpio.Pin
	ledPins    []rpio.Pin
	hbridge    rpio.Pin

	outputs command.Driver
	bus     *adc.RPIOBus
	adc     *adc.MCP3208
	camera  *linescan.Camera
}

func NewPi(cfg config.BoardConfig, adcCfg config.ADCConfig, camCfg config.CameraConfig, outputs command.Driver) *Pi {
	return &Pi{
		cfg:     cfg,
		adcCfg:  adcCfg,
		camCfg:  camCfg,
		outputs: outputs,
	}
}

func (p *Pi) Init() error {
	err := rpio.Open()
	if err != nil {
		return fmt.Errorf("failed opening rpio: %w", err)
	}

	p.dipPins = inputPins(p.cfg.DIPPins)
	p.dipMasks = BuildPinMasks(len(p.dipPins))
	p.buttonPins = inputPins(p.cfg.ButtonPins)
	p.ledPins = outputPins(p.cfg.LEDPins)

	p.hbridge = rpio.Pin(p.cfg.HBridgePin)
	p.hbridge.Output()
	p.hbridge.Low()

	p.bus, err = adc.NewRPIOBus(p.adcCfg.ChipSelect, p.adcCfg.Speed)
	if err != nil {
		p.release()
		return fmt.Errorf("failed starting adc: %w", err)
	}
	p.adc = adc.NewMCP3208(p.bus)

	si := rpio.Pin(p.camCfg.SIPin)
	si.Output()
	clk := rpio.Pin(p.camCfg.ClockPin)
	clk.Output()
	p.camera = linescan.NewCamera(si, clk, p.adc, p.adcCfg.CameraChannel, p.camCfg.ExposureTime)

	err = p.outputs.Init()
	if err != nil {
		p.release()
		return fmt.Errorf("failed initializing outputs: %w", err)
	}

	log.Info().Ints("dip_pins", p.cfg.DIPPins).Ints("led_pins", p.cfg.LEDPins).Int("hbridge_pin", p.cfg.HBridgePin).Msg("pi board ready")
	return nil
}

func (p *Pi) Start(ctx context.Context) error {
	return p.camera.Start(ctx)
}

func (p *Pi) Stop() error {
	log.Info().Msg("stopping pi board")
	p.SetMotorPWM(0, 0)
	p.SetHBridge(false)
	SetBatteryLEDLevel(p, 0)

	err := p.outputs.Stop()
	if err != nil {
		log.Error().Err(err).Msg("failed stopping outputs")
	}

	return p.release()
}

// release ends the SPI session, if any, and unmaps the gpio registers.
func (p *Pi) release() error {
	if p.bus != nil {
		p.bus.Close()
		p.bus = nil
	}

	err := rpio.Close()
	if err != nil {
		return fmt.Errorf("failed closing rpio: %w", err)
	}
	return nil
}

func (p *Pi) DIPSwitch() uint8 {
	states := make([]bool, len(p.dipPins))
	for i := range p.dipPins {
		states[i] = p.dipPins[i].Read() == rpio.High
	}
	return PackBits(states, p.dipMasks)
}

func (p *Pi) PushButton(n int) bool {
	if n < 0 || n >= len(p.buttonPins) {
		return false
	}
	return p.buttonPins[n].Read() == rpio.High
}

func (p *Pi) SetBatteryLED(n int, on bool) {
	if n < 0 || n >= len(p.ledPins) {
		return
	}
	if on {
		p.ledPins[n].High()
	} else {
		p.ledPins[n].Low()
	}
}

func (p *Pi) SetHBridge(enabled bool) {
	if enabled {
		p.hbridge.High()
	} else {
		p.hbridge.Low()
	}
}

func (p *Pi) ReadPot(ch int) float64 {
	adcChannel := p.adcCfg.Pot0Channel
	if ch == 1 {
		adcChannel = p.adcCfg.Pot1Channel
	} else if ch != 0 {
		log.Error().Int("pot", ch).Msg("no such pot")
		return 0
	}

	value, err := p.adc.ReadNormalized(adcChannel)
	if err != nil {
		log.Error().Err(err).Int("pot", ch).Msg("failed reading pot")
		return 0
	}
	return value
}

func (p *Pi) SetServo(ch int, pos float64) {
	if ch < 0 || ch >= len(servoNames) {
		log.Error().Int("servo", ch).Msg("no such servo")
		return
	}
	p.set(servoNames[ch], pos)
}

func (p *Pi) SetMotorPWM(a, b float64) {
	p.set(command.NameMotorA, a)
	p.set(command.NameMotorB, b)
}

func (p *Pi) set(name string, value float64) {
	err := p.outputs.Set(name, value, MinOutput, MaxOutput)
	if err != nil {
		log.Error().Err(err).Str("output", name).Msg("failed setting output")
	}
}

func (p *Pi) LineScan() ([]uint16, bool) {
	return p.camera.Image()
}

func (p *Pi) ClearLineScanReady() {
	p.camera.ClearReady()
}

func inputPins(numbers []int) []rpio.Pin {
	pins := make([]rpio.Pin, len(numbers))
	for i := range numbers {
		pins[i] = rpio.Pin(numbers[i])
		pins[i].Input()
		pins[i].PullDown()
	}
	return pins
}

func outputPins(numbers []int) []rpio.Pin {
	pins := make([]rpio.Pin, len(numbers))
	for i := range numbers {
		pins[i] = rpio.Pin(numbers[i])
		pins[i].Output()
		pins[i].Low()
	}
	return pins
}
