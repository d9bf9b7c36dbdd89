// Package testhelpers provides common utilities and helper functions for testing the playground server.
//
// It provides functions for making HTTP requests, asserting response
// properties, and driving WebSocket chat connections to reduce code
// duplication in test files.
package testhelpers

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// TestOrigin is the Origin header sent by ConnectWebSocket.
const TestOrigin = "http://localhost:3000"

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, got, expected int) {
	t.Helper()
	if got != expected {
		t.Errorf("Expected status code %d, got %d", expected, got)
	}
}

// AssertHTMLContentType checks that a response is served as HTML.
func AssertHTMLContentType(t *testing.T, header http.Header) {
	t.Helper()
	contentType := header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/html") {
		t.Errorf("Expected text/html content type, got %q", contentType)
	}
}

// AssertContains fails the test when body does not contain every substring.
func AssertContains(t *testing.T, body string, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		if !strings.Contains(body, s) {
			t.Errorf("Expected body to contain %q, got %q", s, body)
		}
	}
}

// MakeRequest creates and executes an HTTP request, returning the status and body.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, rawURL string, body io.Reader, header http.Header) (*http.Response, string) {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequest(method, rawURL, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return resp, string(data)
}

// WebSocketURL converts an httptest server URL into a ws:// URL for path.
func WebSocketURL(t *testing.T, serverURL, path string) string {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("Failed to parse server URL: %v", err)
	}
	u.Scheme = "ws"
	u.Path = path
	return u.String()
}

// ConnectWebSocket creates a WebSocket connection to the specified URL and
// registers cleanup to close it.
func ConnectWebSocket(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", TestOrigin)

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendChat sends a chat payload with the given username and message.
func SendChat(conn *websocket.Conn, username, message string) error {
	payload := map[string]string{"message": message}
	if username != "" {
		payload["username"] = username
	}
	return conn.WriteJSON(payload)
}

// ReceiveRecord reads one JSON record, failing the test after timeout.
func ReceiveRecord(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Received non-JSON record %q: %v", data, err)
	}
	return record
}

// ReceiveRecordOfType reads records until one of the given type arrives.
func ReceiveRecordOfType(t *testing.T, conn *websocket.Conn, recordType string, timeout time.Duration) map[string]any {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("Timed out waiting for %q record", recordType)
		}
		record := ReceiveRecord(t, conn, remaining)
		if record["type"] == recordType {
			return record
		}
	}
}

// ExpectNoMessage asserts that nothing arrives on conn within timeout.
func ExpectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no message, but received %q", data)
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return
	}
	t.Fatalf("Unexpected error while waiting for absence of message: %v", err)
}

// WaitFor polls cond until it returns true or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
