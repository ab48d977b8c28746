package pca9685

import (
	"fmt"

	"github.com/Speshl/gotfc/internal/command"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/googolgl/go-i2c"
	"github.com/googolgl/go-pca9685"
	"github.com/rs/zerolog/log"
)

const (
	MaxValue = 1.0
	MinValue = 0.0
	MaxPulse = pca9685.ServoMaxPulseDef
	MinPulse = pca9685.ServoMinPulseDef
	AcRange  = pca9685.ServoRangeDef

	// 12 bit counter, off step for a full duty cycle
	FullDuty = 4095

	MaxSupportedOutputs = 16
)

type Command struct {
	cfg     config.CommandConfig
	outputs map[string]Output
	driver  *pca9685.PCA9685
}

type Output struct {
	name     string
	kind     string
	channel  int
	inverted bool
	offset   float64
	servo    *pca9685.Servo
}

func NewCommand(cfg config.CommandConfig) *Command {
	return &Command{
		cfg: cfg,
	}
}

func (c *Command) Init() error {
	i2c, err := i2c.New(c.cfg.Address, c.cfg.I2CDevice)
	if err != nil {
		return fmt.Errorf("error starting i2c with address - %w", err)
	}

	c.driver, err = pca9685.New(i2c, nil)
	if err != nil {
		return fmt.Errorf("error getting pwm driver - %w", err)
	}

	outputs := make(map[string]Output, MaxSupportedOutputs)
	for i := range c.cfg.OutputCfgs {
		outputCfg := c.cfg.OutputCfgs[i]
		if outputCfg.Channel < 0 || outputCfg.Channel >= MaxSupportedOutputs {
			return fmt.Errorf("output %s has invalid channel %d", outputCfg.Name, outputCfg.Channel)
		}

		output := Output{
			name:     outputCfg.Name,
			kind:     outputCfg.Type,
			channel:  outputCfg.Channel,
			inverted: outputCfg.Inverted,
			offset:   float64(outputCfg.Offset) / 100,
		}
		if output.kind != command.TypeMotor {
			output.kind = command.TypeServo
			output.servo = c.driver.ServoNew(outputCfg.Channel, &pca9685.ServOptions{
				AcRange:  AcRange,
				MinPulse: float32(outputCfg.MinPulse),
				MaxPulse: float32(outputCfg.MaxPulse),
			})
		}
		outputs[output.name] = output
		log.Info().Str("output", output.name).Str("type", output.kind).Int("channel", output.channel).Msg("output added")
	}
	c.outputs = outputs
	c.CenterAll()
	return nil
}

// CenterAll puts servos at mid travel and motors at zero drive.
func (c *Command) CenterAll() {
	log.Info().Msg("centering all outputs")
	for name := range c.outputs {
		err := c.write(c.outputs[name], 0.5)
		if err != nil {
			log.Error().Err(err).Str("output", name).Msg("failed centering output")
		}
	}
}

func (c *Command) Stop() error {
	if c.driver == nil {
		return nil
	}
	c.CenterAll()
	return nil
}

func (c *Command) Set(name string, value, min, max float64) error {
	output, ok := c.outputs[name]
	if !ok {
		return nil
	}

	err := c.write(output, outputFraction(output.offset, output.inverted, value, min, max))
	if err != nil {
		return fmt.Errorf("failed setting output value - name: %s value: %.2f - error: %w", name, value, err)
	}
	return nil
}

func (c *Command) write(output Output, fraction float64) error {
	if output.kind == command.TypeMotor {
		return c.driver.SetChannel(output.channel, 0, int(fraction*FullDuty))
	}
	return output.servo.Fraction(float32(fraction))
}

func outputFraction(offset float64, inverted bool, value, min, max float64) float64 {
	mappedValue := command.MapToRange(value+offset, min, max, MinValue, MaxValue)
	if inverted {
		mappedValue = MaxValue - mappedValue
	}
	return mappedValue
}
