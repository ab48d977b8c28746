// Package linescan acquires images from a 128 pixel linear sensor array
// (TSL1401 style) and renders them as text.
package linescan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const NumPixels = 128

type Pin interface {
	High()
	Low()
}

// Sampler reads the camera's analog output.
type Sampler interface {
	Read(ch int) (uint16, error)
}

type Camera struct {
	lock sync.Mutex

	si      Pin
	clk     Pin
	sampler Sampler
	channel int

	exposure time.Duration

	image [NumPixels]uint16
	back  [NumPixels]uint16
	ready bool
}

func NewCamera(si, clk Pin, sampler Sampler, channel int, exposure time.Duration) *Camera {
	return &Camera{
		si:       si,
		clk:      clk,
		sampler:  sampler,
		channel:  channel,
		exposure: exposure,
	}
}

// Start clocks out a frame every exposure period until ctx is done.
func (c *Camera) Start(ctx context.Context) error {
	if c.exposure <= 0 {
		return fmt.Errorf("invalid camera exposure time %s", c.exposure)
	}
	log.Info().Dur("exposure", c.exposure).Msg("starting linescan camera")

	c.si.Low()
	c.clk.Low()

	exposureTicker := time.NewTicker(c.exposure)
	defer exposureTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("reason", ctx.Err().Error()).Msg("stopping linescan camera")
			return ctx.Err()
		case <-exposureTicker.C:
			err := c.Capture()
			if err != nil {
				return fmt.Errorf("failed capturing linescan image: %w", err)
			}
		}
	}
}

// Capture reads one frame. The SI pulse also ends the current integration
// period, so frames are exposed for the time between captures.
func (c *Camera) Capture() error {
	c.si.High()
	c.clk.High()
	c.si.Low()

	for i := 0; i < NumPixels; i++ {
		value, err := c.sampler.Read(c.channel)
		if err != nil {
			c.clk.Low()
			return err
		}
		c.back[i] = value
		c.clk.Low()
		c.clk.High()
	}
	// 129th clock pulse puts the output back in high impedance
	c.clk.Low()

	c.lock.Lock()
	c.image, c.back = c.back, c.image
	c.ready = true
	c.lock.Unlock()
	return nil
}

// Image returns a copy of the latest frame and whether it is new since the
// last ClearReady.
func (c *Camera) Image() ([]uint16, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	image := make([]uint16, NumPixels)
	copy(image, c.image[:])
	return image, c.ready
}

func (c *Camera) ClearReady() {
	c.lock.Lock()
	c.ready = false
	c.lock.Unlock()
}
