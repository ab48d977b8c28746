package pipwm

import (
	"fmt"

	"github.com/Speshl/gotfc/internal/command"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	Frequency           = 100000
	CycleLength         = uint32(2000)
	MaxSupportedOutputs = 2
)

var PinMap = []int{12, 13} //PWM0, PWM1

// CommandDriver drives up to two outputs from the Pi's hardware PWM pins.
// The caller owns rpio.Open/Close.
type CommandDriver struct {
	cfg     config.CommandConfig
	outputs map[string]Output
}

type Output struct {
	name     string
	kind     string
	inverted bool
	offset   float64
	pin      rpio.Pin
	maxValue uint32
	minValue uint32
}

func NewCommand(cfg config.CommandConfig) *CommandDriver {
	return &CommandDriver{
		cfg: cfg,
	}
}

// assignPins hands out the hardware pwm pins in config order, motors first.
// It returns the index of each output that got a pin, keyed by pin.
func assignPins(cfgs []config.OutputConfig) map[int]int {
	order := make([]int, 0, len(cfgs))
	for i := range cfgs {
		if cfgs[i].Type == command.TypeMotor {
			order = append(order, i)
		}
	}
	for i := range cfgs {
		if cfgs[i].Type != command.TypeMotor {
			order = append(order, i)
		}
	}

	assigned := make(map[int]int, MaxSupportedOutputs)
	for n, i := range order {
		if n >= len(PinMap) {
			log.Warn().Str("output", cfgs[i].Name).Msg("no hardware pwm pin left, output skipped")
			continue
		}
		assigned[PinMap[n]] = i
	}
	return assigned
}

func (c *CommandDriver) Init() error {
	outputs := make(map[string]Output, MaxSupportedOutputs)
	assigned := assignPins(c.cfg.OutputCfgs)
	for _, pin := range PinMap {
		i, ok := assigned[pin]
		if !ok {
			continue
		}

		outputCfg := c.cfg.OutputCfgs[i]
		output := Output{
			name:     outputCfg.Name,
			kind:     outputCfg.Type,
			inverted: outputCfg.Inverted,
			offset:   float64(outputCfg.Offset) / 100,
			pin:      rpio.Pin(pin),
			maxValue: uint32(outputCfg.MaxPulse),
			minValue: uint32(outputCfg.MinPulse),
		}
		if output.kind == command.TypeMotor {
			output.minValue = 0
			output.maxValue = CycleLength
		}
		if output.maxValue > CycleLength || output.minValue > output.maxValue {
			return fmt.Errorf("output %s pulse range %d-%d does not fit cycle %d", output.name, output.minValue, output.maxValue, CycleLength)
		}

		output.pin.Mode(rpio.Pwm)
		output.pin.Freq(Frequency)
		outputs[output.name] = output
		log.Info().Str("output", output.name).Int("pin", pin).Msg("output added")
	}
	c.outputs = outputs
	c.CenterAll()
	return nil
}

func (c *CommandDriver) Stop() error {
	c.CenterAll()
	return nil
}

func (c *CommandDriver) CenterAll() {
	log.Info().Msg("centering all outputs")
	for i := range c.outputs {
		midValue := (c.outputs[i].maxValue + c.outputs[i].minValue) / 2
		c.outputs[i].pin.DutyCycle(midValue, CycleLength)
	}
}

func (c *CommandDriver) Set(name string, value, min, max float64) error {
	output, ok := c.outputs[name]
	if ok {
		output.pin.DutyCycle(dutyLength(output, value, min, max), CycleLength)
	}
	return nil
}

func dutyLength(output Output, value, min, max float64) uint32 {
	mappedValue := command.MapToRange(value+output.offset, min, max, float64(output.minValue), float64(output.maxValue))
	if output.inverted {
		mappedValue = float64(output.maxValue) - mappedValue + float64(output.minValue)
	}
	return uint32(mappedValue)
}
