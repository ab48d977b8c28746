// Package ticker implements the software timers every test mode polls: a
// registry of saturating tick counters and the periodic source that advances
// them.
//
// A consumer implements a one-shot periodic timer by polling
//
//	if reg.Read(id) >= threshold {
//		reg.Reset(id)
//		...
//	}
//
// which fires every threshold*period.
package ticker

import (
	"math"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const MaxTicks = math.MaxUint32

// Registry holds a fixed set of tick counters. Counters are advanced from the
// tick goroutine and read or reset from the main loop, so every access is
// atomic.
type Registry struct {
	tickers []atomic.Uint32
}

func NewRegistry(numTickers int) *Registry {
	if numTickers < 0 {
		numTickers = 0
	}
	return &Registry{
		tickers: make([]atomic.Uint32, numTickers),
	}
}

func (r *Registry) Len() int {
	return len(r.tickers)
}

// AdvanceAll adds one tick to every counter that is not already at MaxTicks.
func (r *Registry) AdvanceAll() {
	for i := range r.tickers {
		for {
			current := r.tickers[i].Load()
			if current == MaxTicks {
				break
			}
			// a Reset between Load and CAS makes the swap fail, retry from zero
			if r.tickers[i].CompareAndSwap(current, current+1) {
				break
			}
		}
	}
}

func (r *Registry) Read(id int) uint32 {
	if !r.valid(id) {
		return 0
	}
	return r.tickers[id].Load()
}

func (r *Registry) Reset(id int) {
	if !r.valid(id) {
		return
	}
	r.tickers[id].Store(0)
}

// Elapsed reports whether counter id has reached threshold and resets it if so.
func (r *Registry) Elapsed(id int, threshold uint32) bool {
	if r.Read(id) >= threshold {
		r.Reset(id)
		return true
	}
	return false
}

func (r *Registry) valid(id int) bool {
	if id < 0 || id >= len(r.tickers) {
		log.Error().Int("ticker", id).Int("num_tickers", len(r.tickers)).Msg("ticker id out of range")
		return false
	}
	return true
}
