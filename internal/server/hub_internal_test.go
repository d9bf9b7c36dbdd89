package server

import (
	"encoding/json"
	"testing"
	"time"
)

func newIdleClient(hub *Hub, addr string) *Client {
	return NewClient(nil, hub, addr, 0)
}

func decodeRecord(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(payload, &record); err != nil {
		t.Fatalf("Invalid record %q: %v", payload, err)
	}
	return record
}

func nextRecord(t *testing.T, client *Client) map[string]any {
	t.Helper()
	select {
	case payload, ok := <-client.send:
		if !ok {
			t.Fatal("Send channel closed unexpectedly")
		}
		return decodeRecord(t, payload)
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for record")
	}
	return nil
}

// TestFanOutDropsStalledClient verifies a full outbound buffer removes only
// that client while the rest still receive the broadcast.
func TestFanOutDropsStalledClient(t *testing.T) {
	hub := NewHub(time.Hour)
	hub.now = func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }

	stalled := newIdleClient(hub, "stalled")
	healthy := newIdleClient(hub, "healthy")
	hub.registerClient(stalled)
	hub.registerClient(healthy)

	for len(stalled.send) < cap(stalled.send) {
		stalled.send <- []byte("{}")
	}

	hub.handleChat(inboundChat{Message: InboundMessage{Username: json.RawMessage(`"x"`), Message: json.RawMessage(`"hi"`)}})

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("Expected stalled client to be removed, %d clients remain", got)
	}

	welcome := nextRecord(t, healthy)
	if welcome["type"] != TypeConnection || welcome["clientCount"].(float64) != 2 {
		t.Errorf("Unexpected welcome: %v", welcome)
	}
	msg := nextRecord(t, healthy)
	if msg["type"] != TypeMessage || msg["message"] != "hi" || msg["timestamp"] != "1:00:00 PM" {
		t.Errorf("Unexpected chat record: %v", msg)
	}

	for range cap(stalled.send) {
		<-stalled.send
	}
	if _, ok := <-stalled.send; ok {
		t.Error("Expected stalled client's send channel to be closed")
	}
}

// TestHeartbeatSkipsEmptyRegistry verifies no record is built without clients
// and the count is reported once clients exist.
func TestHeartbeatSkipsEmptyRegistry(t *testing.T) {
	hub := NewHub(time.Hour)
	hub.sendHeartbeat()

	client := newIdleClient(hub, "one")
	hub.registerClient(client)
	nextRecord(t, client)

	hub.sendHeartbeat()
	update := nextRecord(t, client)
	if update["type"] != TypeUpdate || update["connectedClients"].(float64) != 1 {
		t.Errorf("Unexpected heartbeat: %v", update)
	}
}

// TestUnregisterIsIdempotent verifies repeated removal does not panic.
func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(time.Hour)
	client := newIdleClient(hub, "one")
	hub.registerClient(client)

	hub.unregisterClient(client)
	hub.unregisterClient(client)
	hub.removeFailedClients([]*Client{client})

	if hub.ClientCount() != 0 {
		t.Errorf("Expected empty registry, got %d", hub.ClientCount())
	}
	if hub.safeSend(client, []byte("{}")) {
		t.Error("Expected send to unregistered client to fail")
	}
}

// TestChatDefaultsUsername verifies the Anonymous fallback and sequence ids.
func TestChatDefaultsUsername(t *testing.T) {
	hub := NewHub(time.Hour)
	client := newIdleClient(hub, "one")
	hub.registerClient(client)
	nextRecord(t, client)

	hub.handleChat(inboundChat{Sender: client, Message: InboundMessage{Message: json.RawMessage(`"first"`)}})
	hub.handleChat(inboundChat{Sender: client, Message: InboundMessage{Username: json.RawMessage(`"bob"`), Message: json.RawMessage(`"second"`)}})

	first := nextRecord(t, client)
	second := nextRecord(t, client)
	if first["username"] != defaultUsername || first["id"].(float64) != 1 {
		t.Errorf("Unexpected first record: %v", first)
	}
	if second["username"] != "bob" || second["id"].(float64) != 2 {
		t.Errorf("Unexpected second record: %v", second)
	}
}

// TestDisplayName covers the Anonymous fallback for absent and falsy usernames.
func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "Absent", raw: "", expected: `"Anonymous"`},
		{name: "Null", raw: "null", expected: `"Anonymous"`},
		{name: "Empty string", raw: `""`, expected: `"Anonymous"`},
		{name: "False", raw: "false", expected: `"Anonymous"`},
		{name: "Zero", raw: "0", expected: `"Anonymous"`},
		{name: "Negative zero float", raw: "-0.0", expected: `"Anonymous"`},
		{name: "Plain name", raw: `"bob"`, expected: `"bob"`},
		{name: "Quoted zero is a name", raw: `"0"`, expected: `"0"`},
		{name: "Number kept", raw: "7", expected: "7"},
		{name: "True kept", raw: "true", expected: "true"},
		{name: "Object kept", raw: `{"a":1}`, expected: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(displayName(json.RawMessage(tt.raw))); got != tt.expected {
				t.Errorf("displayName(%q) = %s, want %s", tt.raw, got, tt.expected)
			}
		})
	}
}

// TestShutdownClosesSendChannels verifies shutdown empties the registry and
// closes every outbound channel so write pumps can exit.
func TestShutdownClosesSendChannels(t *testing.T) {
	hub := NewHub(time.Hour)
	first := newIdleClient(hub, "first")
	second := newIdleClient(hub, "second")
	hub.registerClient(first)
	hub.registerClient(second)

	hub.shutdownClients()

	if hub.ClientCount() != 0 {
		t.Errorf("Expected empty registry after shutdown, got %d", hub.ClientCount())
	}
	for _, client := range []*Client{first, second} {
		<-client.send
		if _, ok := <-client.send; ok {
			t.Errorf("Expected send channel of %s to be closed", client.addr)
		}
		if !client.closed {
			t.Errorf("Expected %s to be marked closed", client.addr)
		}
	}
	if hub.safeSend(first, []byte("{}")) {
		t.Error("Expected send after shutdown to fail")
	}
}
