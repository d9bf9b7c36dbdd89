// Package server defines the JSON records exchanged with chat clients and
// utility helpers that are reused across client and hub logic.
package server

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Outbound record kinds.
const (
	TypeConnection = "connection"
	TypeMessage    = "message"
	TypeUpdate     = "update"
)

const (
	defaultUsername   = "Anonymous"
	welcomeText       = "Connected to WebSocket server!"
	heartbeatText     = "Server heartbeat"
	isoTimestampStyle = "2006-01-02T15:04:05.000Z"
)

// InboundMessage is the JSON payload a client sends to the chat. Both fields
// are kept as raw JSON and forwarded without validation.
type InboundMessage struct {
	Username json.RawMessage `json:"username,omitempty"`
	Message  json.RawMessage `json:"message,omitempty"`
}

// ConnectionRecord is sent once to a client when it joins.
type ConnectionRecord struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	ClientCount int    `json:"clientCount"`
}

// ChatMessage is a stamped chat message broadcast to every client.
type ChatMessage struct {
	Type      string `json:"type"`
	ID        int64           `json:"id"`
	Username  json.RawMessage `json:"username"`
	Message   json.RawMessage `json:"message,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// UpdateRecord is the periodic heartbeat broadcast.
type UpdateRecord struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	Timestamp        string `json:"timestamp"`
	ServerTime       string `json:"serverTime"`
	ConnectedClients int    `json:"connectedClients"`
}

// inboundChat pairs a decoded message with the client that sent it.
type inboundChat struct {
	Sender  *Client
	Message InboundMessage
}

// displayName returns the sender's username, or Anonymous when it is absent,
// null, false, zero or the empty string.
func displayName(raw json.RawMessage) json.RawMessage {
	value := bytes.TrimSpace(raw)
	switch string(value) {
	case "", "null", "false", `""`:
		return anonymousName
	}
	if n, err := strconv.ParseFloat(string(value), 64); err == nil && n == 0 {
		return anonymousName
	}
	return value
}

var anonymousName = json.RawMessage(strconv.Quote(defaultUsername))

// isoTimestamp formats t in UTC with millisecond precision.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format(isoTimestampStyle)
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
