// Package command drives the named PWM outputs (steering servos and H-bridge
// motor channels) behind a common interface.
package command

const (
	TypeServo = "servo"
	TypeMotor = "motor"

	NameServo0 = "servo0"
	NameServo1 = "servo1"
	NameMotorA = "motor_a"
	NameMotorB = "motor_b"
)

type Driver interface {
	Init() error
	// Set drives output name to value, scaled from [min, max] to the output's range.
	// Unknown names are ignored.
	Set(name string, value, min, max float64) error
	CenterAll()
	Stop() error
}

// MapToRange linearly maps value from [min, max] to [minReturn, maxReturn],
// clamping the result.
func MapToRange(value, min, max, minReturn, maxReturn float64) float64 {
	mappedValue := (maxReturn-minReturn)*(value-min)/(max-min) + minReturn

	if mappedValue > maxReturn {
		return maxReturn
	} else if mappedValue < minReturn {
		return minReturn
	} else {
		return mappedValue
	}
}
