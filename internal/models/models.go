// Package models holds the messages exchanged with the pit server.
package models

import (
	"github.com/google/uuid"
)

type ConnectReq struct {
	Key       string    `json:"key"`
	Password  string    `json:"password"`
	SessionID uuid.UUID `json:"session_id"`
}

type ConnectResp struct {
	Car Car `json:"car"`
}

type Car struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
}

// Telemetry carries terminal lines printed since the previous message.
type Telemetry struct {
	SessionID uuid.UUID `json:"session_id"`
	Lines     []string  `json:"lines"`
	Dropped   int       `json:"dropped"`
	TimeStamp int64     `json:"time_stamp"`
}

type Health struct {
	SessionID     uuid.UUID `json:"session_id"`
	ResidentBytes int       `json:"resident_bytes"`
	CPUSeconds    float64   `json:"cpu_seconds"`
	Threads       int       `json:"threads"`
	Interface     string    `json:"interface"`
	RxPackets     uint64    `json:"rx_packets"`
	RxErrors      uint64    `json:"rx_errors"`
	RxDropped     uint64    `json:"rx_dropped"`
	TxPackets     uint64    `json:"tx_packets"`
	TxErrors      uint64    `json:"tx_errors"`
	TxDropped     uint64    `json:"tx_dropped"`
	TimeStamp     int64     `json:"time_stamp"`
}
