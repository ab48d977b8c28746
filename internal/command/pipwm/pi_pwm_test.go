package pipwm

import (
	"testing"

	"github.com/Speshl/gotfc/internal/command"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDutyLength(t *testing.T) {
	servo := Output{minValue: 750, maxValue: 2000}

	assert.Equal(t, uint32(750), dutyLength(servo, -1, -1, 1))
	assert.Equal(t, uint32(2000), dutyLength(servo, 1, -1, 1))
	assert.Equal(t, uint32(1375), dutyLength(servo, 0, -1, 1))

	servo.inverted = true
	assert.Equal(t, uint32(2000), dutyLength(servo, -1, -1, 1))
	assert.Equal(t, uint32(750), dutyLength(servo, 1, -1, 1))
}

func TestDutyLengthMotor(t *testing.T) {
	motor := Output{kind: "motor", minValue: 0, maxValue: CycleLength}

	assert.Equal(t, uint32(1000), dutyLength(motor, 0, -1, 1))
	assert.Equal(t, CycleLength, dutyLength(motor, 5, -1, 1))
}

func TestAssignPinsPutsMotorsFirst(t *testing.T) {
	cfgs := []config.OutputConfig{
		{Name: command.NameServo0, Type: command.TypeServo, Channel: 0},
		{Name: command.NameServo1, Type: command.TypeServo, Channel: 1},
		{Name: command.NameMotorA, Type: command.TypeMotor, Channel: 4},
		{Name: command.NameMotorB, Type: command.TypeMotor, Channel: 5},
	}

	assert.Equal(t, map[int]int{12: 2, 13: 3}, assignPins(cfgs))
}

func TestAssignPinsFillsWithServos(t *testing.T) {
	cfgs := []config.OutputConfig{
		{Name: command.NameServo0, Type: command.TypeServo},
		{Name: command.NameMotorA, Type: command.TypeMotor},
	}
	assert.Equal(t, map[int]int{12: 1, 13: 0}, assignPins(cfgs))

	assert.Equal(t, map[int]int{12: 0}, assignPins(cfgs[:1]))
	assert.Empty(t, assignPins(nil))
}
