// Package adc reads the analog inputs (pots and linescan camera output)
// through an MCP3208 12-bit SPI converter.
package adc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	NumChannels = 8
	MaxValue    = 4095
)

var ErrInvalidChannel = errors.New("invalid adc channel")

// Bus exchanges one full duplex SPI frame in place.
type Bus interface {
	Exchange(data []byte)
}

type MCP3208 struct {
	lock sync.Mutex
	bus  Bus
	buf  [3]byte
}

func NewMCP3208(bus Bus) *MCP3208 {
	return &MCP3208{
		bus: bus,
	}
}

// Read returns a single ended conversion of channel ch (0..4095).
func (m *MCP3208) Read(ch int) (uint16, error) {
	if ch < 0 || ch >= NumChannels {
		return 0, fmt.Errorf("channel %d: %w", ch, ErrInvalidChannel)
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	encodeRequest(m.buf[:], ch)
	m.bus.Exchange(m.buf[:])
	return decodeResponse(m.buf[:]), nil
}

// ReadNormalized maps channel ch onto [-1, 1], the range the pots are reported in.
func (m *MCP3208) ReadNormalized(ch int) (float64, error) {
	value, err := m.Read(ch)
	if err != nil {
		return 0, err
	}
	return float64(value)/MaxValue*2 - 1, nil
}

// start bit, single ended, 3 bit channel, then 12 data bits clocked back
func encodeRequest(frame []byte, ch int) {
	frame[0] = 0x06 | byte(ch>>2)
	frame[1] = byte(ch&0x03) << 6
	frame[2] = 0
}

func decodeResponse(frame []byte) uint16 {
	return uint16(frame[1]&0x0F)<<8 | uint16(frame[2])
}

// RPIOBus is the Pi's SPI0 controller. The caller owns rpio.Open/Close.
type RPIOBus struct {
	dev rpio.SpiDev
}

func NewRPIOBus(chipSelect int, speed int) (*RPIOBus, error) {
	err := rpio.SpiBegin(rpio.Spi0)
	if err != nil {
		return nil, fmt.Errorf("failed starting spi: %w", err)
	}
	rpio.SpiChipSelect(uint8(chipSelect))
	rpio.SpiSpeed(speed)
	log.Info().Int("chip_select", chipSelect).Int("speed", speed).Msg("spi adc bus ready")
	return &RPIOBus{dev: rpio.Spi0}, nil
}

func (b *RPIOBus) Exchange(data []byte) {
	rpio.SpiExchange(data)
}

func (b *RPIOBus) Close() {
	rpio.SpiEnd(b.dev)
}
