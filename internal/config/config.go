package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultOutputs are the outputs the TFC shield exposes when nothing is configured.
var defaultOutputs = []OutputConfig{
	{Name: "servo0", Type: "servo", Channel: 0},
	{Name: "servo1", Type: "servo", Channel: 1},
	{Name: "motor_a", Type: "motor", Channel: 4},
	{Name: "motor_b", Type: "motor", Channel: 5},
}

func GetConfig() Config {
	cfg := Config{
		LogLevel:     GetStringEnv("LOGLEVEL", DefaultLogLevel),
		TerminalCfg:  GetTerminalConfig(),
		TickCfg:      GetTickConfig(),
		BoardCfg:     GetBoardConfig(),
		CommandCfg:   GetCommandConfig(),
		ADCCfg:       GetADCConfig(),
		CameraCfg:    GetCameraConfig(),
		TelemetryCfg: GetTelemetryConfig(),
		HealthCfg:    GetHealthConfig(),
	}

	log.Debug().Msgf("app config: %+v", cfg)
	return cfg
}

func GetTerminalConfig() TerminalConfig {
	return TerminalConfig{
		// device paths are case sensitive, so no GetStringEnv here
		Device: GetRawStringEnv("TERMINAL_DEVICE", DefaultTerminalDevice),
		Baud:   GetIntEnv("TERMINAL_BAUD", DefaultTerminalBaud),
	}
}

func GetTickConfig() TickConfig {
	return TickConfig{
		Period:     GetDurationEnv("TICK_PERIOD", DefaultTickPeriod),
		NumTickers: GetIntEnv("NUM_TICKERS", DefaultNumTickers),
		LoopPeriod: GetDurationEnv("LOOP_PERIOD", DefaultLoopPeriod),
	}
}

func GetBoardConfig() BoardConfig {
	return BoardConfig{
		BoardType:   GetStringEnv("BOARD", DefaultBoardType),
		HBridgePin:  GetIntEnv("HBRIDGE_PIN", DefaultHBridgePin),
		DIPPins:     GetIntListEnv("DIP_PINS", DefaultDIPPins, NumDIPSwitches),
		ButtonPins:  GetIntListEnv("BUTTON_PINS", DefaultButtonPins, NumPushButtons),
		LEDPins:     GetIntListEnv("LED_PINS", DefaultLEDPins, NumBatteryLEDs),
		SimSelector: GetIntEnv("SIM_SELECTOR", DefaultSimSelector),
	}
}

func GetCommandConfig() CommandConfig {
	commandCfg := CommandConfig{
		CommandDriver: GetStringEnv("OUTPUTDRIVER", DefaultCommandDriver),
		Address:       byte(GetIntEnv("ADDRESS", DefaultAddress)),
		I2CDevice:     GetRawStringEnv("I2CDEVICE", DefaultI2CDevice),
		OutputCfgs:    make([]OutputConfig, 0, MaxSupportedOutputs),
	}

	for i := 0; i < MaxSupportedOutputs; i++ {
		envPrefix := fmt.Sprintf("OUTPUT%d_", i)

		defaults := OutputConfig{Channel: i, Type: DefaultOutputType}
		if i < len(defaultOutputs) {
			defaults = defaultOutputs[i]
		}

		outputCfg := OutputConfig{
			Name:     GetStringEnv(envPrefix+"NAME", defaults.Name),
			Type:     GetStringEnv(envPrefix+"TYPE", defaults.Type),
			Channel:  GetIntEnv(envPrefix+"CHANNEL", defaults.Channel),
			MaxPulse: float64(GetIntEnv(envPrefix+"MAXPULSE", DefaultMaxPulse)),
			MinPulse: float64(GetIntEnv(envPrefix+"MINPULSE", DefaultMinPulse)),
			Inverted: GetBoolEnv(envPrefix+"INVERTED", DefaultInverted),
			Offset:   GetIntEnv(envPrefix+"MIDOFFSET", DefaultOffset),
		}

		if outputCfg.Name != "" {
			log.Debug().Str("output", outputCfg.Name).Str("type", outputCfg.Type).Msg("found config for output")
			commandCfg.OutputCfgs = append(commandCfg.OutputCfgs, outputCfg)
		}
	}
	return commandCfg
}

func GetADCConfig() ADCConfig {
	return ADCConfig{
		ChipSelect:    GetIntEnv("ADC_CS", DefaultADCChipSelect),
		Speed:         GetIntEnv("ADC_SPEED", DefaultADCSpeed),
		Pot0Channel:   GetIntEnv("ADC_POT0", DefaultPot0Channel),
		Pot1Channel:   GetIntEnv("ADC_POT1", DefaultPot1Channel),
		CameraChannel: GetIntEnv("ADC_CAMERA", DefaultCameraChannel),
	}
}

func GetCameraConfig() CameraConfig {
	return CameraConfig{
		SIPin:        GetIntEnv("CAMERA_SI_PIN", DefaultCameraSIPin),
		ClockPin:     GetIntEnv("CAMERA_CLK_PIN", DefaultCameraClockPin),
		ExposureTime: GetDurationEnv("CAMERA_EXPOSURE", DefaultExposureTime),
		// pot 0 is scaled by this to get the dark/light threshold
		ThresholdScale: GetFloatEnv("CAMERA_THRESHOLD_SCALE", DefaultThresholdScale),
	}
}

func GetTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:  GetBoolEnv("TELEMETRY", DefaultTelemetryEnabled),
		Server:   GetStringEnv("SERVER", DefaultServer),
		Key:      GetStringEnv("CARKEY", DefaultCarKey),
		Password: GetRawStringEnv("CARPASSWORD", DefaultPassword),
	}
}

func GetHealthConfig() HealthConfig {
	return HealthConfig{
		Interval:  GetDurationEnv("HEALTH_INTERVAL", DefaultHealthInterval),
		Interface: GetStringEnv("HEALTH_INTERFACE", DefaultHealthInterface),
	}
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseInt(strings.Trim(envValue, "\r"), 0, 32)
		if err != nil {
			log.Warn().Err(err).Str("env", env).Msg("env not parsed, using default")
			return defaultValue
		} else {
			return int(value)
		}
	}
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseBool(strings.Trim(envValue, "\r"))
		if err != nil {
			log.Warn().Err(err).Str("env", env).Msg("env not parsed, using default")
			return defaultValue
		} else {
			return value
		}
	}
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		return strings.ToLower(strings.Trim(envValue, "\r"))
	}
}

func GetRawStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.Trim(envValue, "\r")
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseFloat(strings.Trim(envValue, "\r"), 64)
		if err != nil {
			log.Warn().Err(err).Str("env", env).Msg("env not parsed, using default")
			return defaultValue
		}
		return value
	}
}

func GetDurationEnv(env string, defaultValue time.Duration) time.Duration {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.Trim(envValue, "\r"))
	if err != nil {
		log.Warn().Err(err).Str("env", env).Msg("env not parsed, using default")
		return defaultValue
	}
	return value
}

// GetIntListEnv parses a comma separated pin list. The list must have exactly
// want entries, otherwise the default is used.
func GetIntListEnv(env string, defaultValue string, want int) []int {
	defaults, err := parseIntList(defaultValue)
	if err != nil {
		panic(fmt.Sprintf("bad default for %s: %s", env, err))
	}

	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaults
	}

	values, err := parseIntList(strings.Trim(envValue, "\r"))
	if err != nil {
		log.Warn().Err(err).Str("env", env).Msg("env not parsed, using default")
		return defaults
	}
	if len(values) != want {
		log.Warn().Str("env", env).Int("want", want).Int("got", len(values)).Msg("wrong number of values, using default")
		return defaults
	}
	return values
}

func parseIntList(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("failed parsing %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}
