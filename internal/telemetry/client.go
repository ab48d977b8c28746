// Package telemetry mirrors the harness terminal and process health to a pit
// server over socket.io.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Speshl/gotfc/internal/config"
	"github.com/Speshl/gotfc/internal/models"
	"github.com/google/uuid"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
)

const (
	LineBufferSize   = 512
	HealthBufferSize = 8
	MaxLinesPerMsg   = 64
	FlushInterval    = 100 * time.Millisecond
	HealthyInterval  = 30 * time.Second

	EventConnect   = "car_connect"
	EventTelemetry = "car_telemetry"
	EventHealth    = "car_health"
	EventHealthy   = "car_healthy"
	EventRegister  = "register_success"
)

// Emitter is the part of the socket.io client the telemetry needs. Emit is
// only called from Start, between Connect and Close.
type Emitter interface {
	Connect() error
	Emit(event string, args ...interface{})
	Close() error
}

type Client struct {
	cfg       config.TelemetryConfig
	emitter   Emitter
	sessionID uuid.UUID

	lines   chan string
	dropped chan int
	health  chan models.Health
}

func NewSocketClient(cfg config.TelemetryConfig) (*Client, error) {
	socketURI := fmt.Sprintf("http://%s", cfg.Server)
	client, err := socketio.NewClient(socketURI, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating socket client - %w", err)
	}

	client.OnEvent(EventRegister, func(s socketio.Conn, msg string) {
		resp := models.ConnectResp{}
		err := decode(msg, &resp)
		if err != nil {
			log.Error().Err(err).Msg("register response failed unmarshaling")
			return
		}
		log.Info().Str("car", resp.Car.Name).Str("short_name", resp.Car.ShortName).Msg("registered with pit server")
	})

	return NewClient(cfg, client), nil
}

func NewClient(cfg config.TelemetryConfig, emitter Emitter) *Client {
	return &Client{
		cfg:       cfg,
		emitter:   emitter,
		sessionID: uuid.New(),
		lines:     make(chan string, LineBufferSize),
		dropped:   make(chan int, 1),
		health:    make(chan models.Health, HealthBufferSize),
	}
}

func (c *Client) SessionID() uuid.UUID {
	return c.sessionID
}

// Publish queues a terminal line. It never blocks; lines are dropped when the
// queue is full.
func (c *Client) Publish(line string) {
	select {
	case c.lines <- line:
	default:
		c.countDrop()
	}
}

func (c *Client) countDrop() {
	select {
	case n := <-c.dropped:
		c.dropped <- n + 1
	default:
		c.dropped <- 1
		log.Warn().Msg("telemetry channel full, skipping")
	}
}

// PublishHealth queues a health sample for Start to send once connected. It
// never blocks; samples are dropped when the queue is full.
func (c *Client) PublishHealth(health models.Health) {
	health.SessionID = c.sessionID
	select {
	case c.health <- health:
	default:
		log.Warn().Msg("telemetry health channel full, skipping")
	}
}

func (c *Client) Start(ctx context.Context) error {
	log.Info().Str("server", c.cfg.Server).Str("session", c.sessionID.String()).Msg("attempting to connect to pit server...")
	err := c.emitter.Connect()
	if err != nil {
		return fmt.Errorf("error connecting to pit server - %w", err)
	}
	defer func() {
		log.Info().Msg("closing pit server connection")
		c.emitter.Close()
	}()

	c.emit(EventConnect, models.ConnectReq{
		Key:       c.cfg.Key,
		Password:  c.cfg.Password,
		SessionID: c.sessionID,
	})

	flushTicker := time.NewTicker(FlushInterval)
	defer flushTicker.Stop()
	healthyTicker := time.NewTicker(HealthyInterval)
	defer healthyTicker.Stop()

	batch := make([]string, 0, MaxLinesPerMsg)
	for {
		select {
		case <-ctx.Done():
			c.flush(c.drain(batch))
			log.Info().Str("reason", ctx.Err().Error()).Msg("stopping telemetry")
			return ctx.Err()
		case line := <-c.lines:
			batch = append(batch, line)
			if len(batch) >= MaxLinesPerMsg {
				batch = c.flush(batch)
			}
		case health := <-c.health:
			c.emit(EventHealth, health)
		case <-flushTicker.C:
			batch = c.flush(batch)
		case <-healthyTicker.C:
			c.emitter.Emit(EventHealthy, "")
		}
	}
}

func (c *Client) drain(batch []string) []string {
	for {
		select {
		case line := <-c.lines:
			batch = append(batch, line)
		default:
			return batch
		}
	}
}

func (c *Client) flush(batch []string) []string {
	dropped := 0
	select {
	case dropped = <-c.dropped:
	default:
	}

	if len(batch) == 0 && dropped == 0 {
		return batch
	}

	lines := make([]string, len(batch))
	copy(lines, batch)
	c.emit(EventTelemetry, models.Telemetry{
		SessionID: c.sessionID,
		Lines:     lines,
		Dropped:   dropped,
		TimeStamp: time.Now().UnixMilli(),
	})
	return batch[:0]
}

func (c *Client) emit(event string, msg any) {
	encodedMsg, err := encode(msg)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed encoding message")
		return
	}
	c.emitter.Emit(event, encodedMsg)
}

func encode(msg any) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decode(msg string, target any) error {
	return json.Unmarshal([]byte(msg), target)
}
