package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()

	assert.Equal(t, DefaultTerminalBaud, cfg.TerminalCfg.Baud)
	assert.Equal(t, 2*time.Millisecond, cfg.TickCfg.Period)
	assert.Equal(t, DefaultNumTickers, cfg.TickCfg.NumTickers)
	assert.Equal(t, []int{5, 6, 13, 19}, cfg.BoardCfg.DIPPins)
	assert.Len(t, cfg.BoardCfg.LEDPins, NumBatteryLEDs)
	assert.False(t, cfg.TelemetryCfg.Enabled)
	assert.Equal(t, 1250.0, cfg.CameraCfg.ThresholdScale)

	require.Len(t, cfg.CommandCfg.OutputCfgs, len(defaultOutputs))
	assert.Equal(t, "servo0", cfg.CommandCfg.OutputCfgs[0].Name)
	assert.Equal(t, "motor", cfg.CommandCfg.OutputCfgs[2].Type)
	assert.Equal(t, 4, cfg.CommandCfg.OutputCfgs[2].Channel)
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("GOTFC_TICK_PERIOD", "1ms")
	t.Setenv("GOTFC_TERMINAL_DEVICE", "/dev/ttyAMA0")
	t.Setenv("GOTFC_BOARD", "SIM")
	t.Setenv("GOTFC_ADDRESS", "0x41")
	t.Setenv("GOTFC_OUTPUT6_NAME", "Steer_Aux")
	t.Setenv("GOTFC_OUTPUT6_INVERTED", "true")
	t.Setenv("GOTFC_CAMERA_THRESHOLD_SCALE", "1000.5")

	cfg := GetConfig()

	assert.Equal(t, time.Millisecond, cfg.TickCfg.Period)
	assert.Equal(t, "/dev/ttyAMA0", cfg.TerminalCfg.Device)
	assert.Equal(t, "sim", cfg.BoardCfg.BoardType)
	assert.Equal(t, byte(0x41), cfg.CommandCfg.Address)
	assert.Equal(t, 1000.5, cfg.CameraCfg.ThresholdScale)

	require.Len(t, cfg.CommandCfg.OutputCfgs, len(defaultOutputs)+1)
	extra := cfg.CommandCfg.OutputCfgs[len(defaultOutputs)]
	assert.Equal(t, "steer_aux", extra.Name)
	assert.Equal(t, 6, extra.Channel)
	assert.True(t, extra.Inverted)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("GOTFC_NUM_TICKERS", "many")
	t.Setenv("GOTFC_LOOP_PERIOD", "soon")
	t.Setenv("GOTFC_LED_PINS", "1,2,3")
	t.Setenv("GOTFC_BUTTON_PINS", "7,x")
	t.Setenv("GOTFC_CAMERA_THRESHOLD_SCALE", "bright")

	assert.Equal(t, DefaultNumTickers, GetIntEnv("NUM_TICKERS", DefaultNumTickers))
	assert.Equal(t, time.Duration(DefaultLoopPeriod), GetDurationEnv("LOOP_PERIOD", DefaultLoopPeriod))
	assert.Equal(t, []int{17, 27, 22, 23}, GetIntListEnv("LED_PINS", DefaultLEDPins, NumBatteryLEDs))
	assert.Equal(t, []int{20, 21}, GetIntListEnv("BUTTON_PINS", DefaultButtonPins, NumPushButtons))
	assert.Equal(t, DefaultThresholdScale, GetFloatEnv("CAMERA_THRESHOLD_SCALE", DefaultThresholdScale))
}

func TestGetIntListEnv(t *testing.T) {
	t.Setenv("GOTFC_DIP_PINS", " 4, 17 ,27,22")
	assert.Equal(t, []int{4, 17, 27, 22}, GetIntListEnv("DIP_PINS", DefaultDIPPins, NumDIPSwitches))
}
