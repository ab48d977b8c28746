// Package terminal is the harness's text console: the serial port the
// original board printed to, or stdout when no port is configured.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Speshl/gotfc/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/tarm/serial"
)

// Mirror receives every completed terminal line, without its line ending.
// Publish must not block.
type Mirror interface {
	Publish(line string)
}

type Terminal struct {
	lock    sync.Mutex
	out     io.Writer
	closer  io.Closer
	mirror  Mirror
	partial strings.Builder
}

func New(out io.Writer) *Terminal {
	return &Terminal{
		out: out,
	}
}

// Open opens the configured serial device, or stdout if none is set.
func Open(cfg config.TerminalConfig) (*Terminal, error) {
	if cfg.Device == "" {
		log.Info().Msg("terminal on stdout")
		return New(os.Stdout), nil
	}

	port, err := serial.OpenPort(&serial.Config{
		Name: cfg.Device,
		Baud: cfg.Baud,
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening terminal %s: %w", cfg.Device, err)
	}
	log.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("terminal on serial port")

	return NewPort(port), nil
}

// NewPort writes to port and closes it on Close.
func NewPort(port io.WriteCloser) *Terminal {
	term := New(port)
	term.closer = port
	return term
}

func (t *Terminal) SetMirror(mirror Mirror) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.mirror = mirror
}

func (t *Terminal) Printf(format string, args ...any) {
	text := fmt.Sprintf(format, args...)

	t.lock.Lock()
	defer t.lock.Unlock()

	_, err := io.WriteString(t.out, text)
	if err != nil {
		log.Error().Err(err).Msg("failed writing to terminal")
	}

	if t.mirror != nil {
		t.forward(text)
	}
}

func (t *Terminal) forward(text string) {
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			t.partial.WriteString(text)
			return
		}
		t.partial.WriteString(text[:idx])
		t.mirror.Publish(strings.TrimRight(t.partial.String(), "\r"))
		t.partial.Reset()
		text = text[idx+1:]
	}
}

func (t *Terminal) Close() error {
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	if err != nil {
		return fmt.Errorf("failed closing terminal: %w", err)
	}
	return nil
}
