package config

import "time"

const (
	MaxSupportedOutputs = 16
	NumBatteryLEDs      = 4
	NumPushButtons      = 2
	NumDIPSwitches      = 4
	AppEnvBase          = "GOTFC_"

	DefaultLogLevel = "info"

	// Default Terminal Options
	DefaultTerminalDevice = "" //stdout
	DefaultTerminalBaud   = 115200

	// Default Tick Options
	DefaultTickPeriod = 2000 * time.Microsecond
	DefaultNumTickers = 4
	DefaultLoopPeriod = time.Millisecond

	// Default Board Options
	DefaultBoardType   = "pi"
	DefaultHBridgePin  = 25
	DefaultDIPPins     = "5,6,13,19"
	DefaultButtonPins  = "20,21"
	DefaultLEDPins     = "17,27,22,23"
	DefaultSimSelector = 0

	// Default Command Options
	DefaultCommandDriver = "pca9685"
	DefaultAddress       = 0x40
	DefaultI2CDevice     = "/dev/i2c-1"
	DefaultMaxPulse      = 2250
	DefaultMinPulse      = 750
	DefaultInverted      = false
	DefaultOffset        = 0
	DefaultOutputType    = "servo"

	// Default ADC Options
	DefaultADCChipSelect = 0
	DefaultADCSpeed      = 1000000
	DefaultPot0Channel   = 0
	DefaultPot1Channel   = 1
	DefaultCameraChannel = 2

	// Default Camera Options
	DefaultCameraSIPin    = 24
	DefaultCameraClockPin = 18
	DefaultExposureTime   = 10 * time.Millisecond
	DefaultThresholdScale = 1250.0

	// Default Telemetry Options
	DefaultTelemetryEnabled = false
	DefaultServer           = "127.0.0.1:8181"
	DefaultCarKey           = ""
	DefaultPassword         = ""

	// Default Health Options
	DefaultHealthInterval  = 5 * time.Second
	DefaultHealthInterface = "wlan0"
)

type Config struct {
	LogLevel     string
	TerminalCfg  TerminalConfig
	TickCfg      TickConfig
	BoardCfg     BoardConfig
	CommandCfg   CommandConfig
	ADCCfg       ADCConfig
	CameraCfg    CameraConfig
	TelemetryCfg TelemetryConfig
	HealthCfg    HealthConfig
}

type TerminalConfig struct {
	Device string
	Baud   int
}

type TickConfig struct {
	Period     time.Duration
	NumTickers int
	LoopPeriod time.Duration
}

type BoardConfig struct {
	BoardType   string
	HBridgePin  int
	DIPPins     []int
	ButtonPins  []int
	LEDPins     []int
	SimSelector int
}

type CommandConfig struct {
	CommandDriver string
	Address       byte
	I2CDevice     string
	OutputCfgs    []OutputConfig
}

type OutputConfig struct {
	Name     string
	Inverted bool
	Type     string
	Channel  int
	MaxPulse float64
	MinPulse float64
	Offset   int
}

type ADCConfig struct {
	ChipSelect    int
	Speed         int
	Pot0Channel   int
	Pot1Channel   int
	CameraChannel int
}

type CameraConfig struct {
	SIPin          int
	ClockPin       int
	ExposureTime   time.Duration
	ThresholdScale float64
}

type TelemetryConfig struct {
	Enabled  bool
	Server   string
	Key      string
	Password string
}

type HealthConfig struct {
	Interval  time.Duration
	Interface string
}
