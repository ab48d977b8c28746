package linescan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPin struct {
	lock  sync.Mutex
	highs int
	lows  int
	state bool
}

func (p *countingPin) High() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.highs++
	p.state = true
}

func (p *countingPin) Low() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.lows++
	p.state = false
}

type rampSampler struct {
	next uint16
	err  error
}

func (s *rampSampler) Read(ch int) (uint16, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.next
	s.next++
	return v, nil
}

func TestCaptureReadsFullFrame(t *testing.T) {
	si, clk := &countingPin{}, &countingPin{}
	cam := NewCamera(si, clk, &rampSampler{}, 2, time.Millisecond)

	_, ready := cam.Image()
	assert.False(t, ready)

	require.NoError(t, cam.Capture())

	image, ready := cam.Image()
	assert.True(t, ready)
	require.Len(t, image, NumPixels)
	for i := range image {
		assert.Equal(t, uint16(i), image[i])
	}

	assert.Equal(t, 1, si.highs)
	assert.Equal(t, NumPixels+1, clk.highs)
	assert.False(t, clk.state)
	assert.False(t, si.state)

	cam.ClearReady()
	_, ready = cam.Image()
	assert.False(t, ready)
}

func TestImageIsACopy(t *testing.T) {
	cam := NewCamera(&countingPin{}, &countingPin{}, &rampSampler{}, 0, time.Millisecond)
	require.NoError(t, cam.Capture())

	image, _ := cam.Image()
	image[0] = 9999

	again, _ := cam.Image()
	assert.Equal(t, uint16(0), again[0])
}

func TestCaptureError(t *testing.T) {
	sampleErr := errors.New("spi gone")
	cam := NewCamera(&countingPin{}, &countingPin{}, &rampSampler{err: sampleErr}, 0, time.Millisecond)

	err := cam.Capture()
	assert.ErrorIs(t, err, sampleErr)

	_, ready := cam.Image()
	assert.False(t, ready)
}

func TestStartCapturesUntilCancelled(t *testing.T) {
	cam := NewCamera(&countingPin{}, &countingPin{}, &rampSampler{}, 0, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- cam.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		_, ready := cam.Image()
		return ready
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStartRejectsBadExposure(t *testing.T) {
	cam := NewCamera(&countingPin{}, &countingPin{}, &rampSampler{}, 0, 0)
	assert.Error(t, cam.Start(context.Background()))
}
