// Package server exposes the HTMX demo handlers, the WebSocket upgrade
// endpoint, and the static page.
package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/htmx-playground/internal/fragment"
	"github.com/Tyrowin/htmx-playground/internal/todo"
)

const indexFile = "learn-htmx.html"

// writeFragment sends an HTML fragment with the given status.
func writeFragment(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		log.Printf("Error writing fragment response: %v", err)
	}
}

// timed adapts a fragment that only needs the current time.
func (a *App) timed(render func(time.Time) string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeFragment(w, http.StatusOK, render(a.now()))
	}
}

// numbered adapts a fragment that shows a random integer in [0, limit).
func (a *App) numbered(render func(time.Time, int) string, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeFragment(w, http.StatusOK, render(a.now(), a.randIntN(limit)))
	}
}

// fixed adapts a fragment with no inputs.
func fixed(render func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeFragment(w, http.StatusOK, render())
	}
}

// SlowDataHandler waits for the configured delay before responding. The wait
// ends early if the client goes away.
func (a *App) SlowDataHandler(w http.ResponseWriter, r *http.Request) {
	delay := a.config.SlowDataDelay
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-r.Context().Done():
		log.Printf("Slow data request from %s cancelled: %v", r.RemoteAddr, r.Context().Err())
		return
	case <-timer.C:
	}

	writeFragment(w, http.StatusOK, fragment.SlowData(a.now(), delay))
}

// SubmitHandler echoes the submitted username.
func (a *App) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var in submitInput
	if err := bindInput(w, r, &in); err != nil {
		log.Printf("Rejected submit body from %s: %v", r.RemoteAddr, err)
		writeFragment(w, http.StatusBadRequest, fragment.BadRequest(err))
		return
	}
	writeFragment(w, http.StatusOK, fragment.Submitted(in.Username, a.now()))
}

// SearchHandler filters the fruit list by the q query parameter.
func (a *App) SearchHandler(w http.ResponseWriter, r *http.Request) {
	writeFragment(w, http.StatusOK, fragment.Search(r.URL.Query().Get("q"), a.now()))
}

// ListTodosHandler renders every todo, or the empty placeholder.
func (a *App) ListTodosHandler(w http.ResponseWriter, _ *http.Request) {
	writeFragment(w, http.StatusOK, fragment.TodoList(a.todos.List()))
}

// CreateTodoHandler adds a todo and renders its row. An empty task yields 400
// with an inline error and leaves the store unchanged.
func (a *App) CreateTodoHandler(w http.ResponseWriter, r *http.Request) {
	var in todoInput
	if err := bindInput(w, r, &in); err != nil {
		log.Printf("Rejected todo body from %s: %v", r.RemoteAddr, err)
		writeFragment(w, http.StatusBadRequest, fragment.BadRequest(err))
		return
	}

	item, err := a.todos.Add(in.Task)
	if err != nil {
		var validationErr *todo.ValidationError
		if errors.As(err, &validationErr) {
			writeFragment(w, http.StatusBadRequest, fragment.TodoError(fragment.TaskRequiredMessage))
			return
		}
		log.Printf("Error adding todo: %v", err)
		writeFragment(w, http.StatusInternalServerError, fragment.TodoError(err.Error()))
		return
	}

	log.Printf("Todo %d created", item.ID)
	writeFragment(w, http.StatusOK, fragment.TodoRow(item))
}

// DeleteTodoHandler removes a todo by id. Unknown or malformed ids still
// succeed with an empty body so the client simply drops the row.
func (a *App) DeleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, ok := parseTodoID(raw)
	switch {
	case !ok:
		log.Printf("Ignoring delete for non-numeric todo id %q", raw)
	case a.todos.Remove(id):
		log.Printf("Todo %d deleted", id)
	}
	writeFragment(w, http.StatusOK, "")
}

// parseTodoID reads the leading integer of raw, ignoring anything after it,
// so "3abc" and "3.5" both name todo 3.
func parseTodoID(raw string) (int, bool) {
	s := strings.TrimLeft(raw, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	id, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ErrorDemoHandler always answers 500 to demonstrate client-side error handling.
func (a *App) ErrorDemoHandler(w http.ResponseWriter, _ *http.Request) {
	writeFragment(w, http.StatusInternalServerError, fragment.ErrorDemo(a.now()))
}

// HeadersDemoHandler lists selected request headers.
func (a *App) HeadersDemoHandler(w http.ResponseWriter, r *http.Request) {
	writeFragment(w, http.StatusOK, fragment.Headers(r.Header, a.now()))
}

// SelectiveDataHandler pretty-prints whatever body was posted.
func (a *App) SelectiveDataHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnyBody(w, r)
	if err != nil {
		log.Printf("Rejected selective data body from %s: %v", r.RemoteAddr, err)
		writeFragment(w, http.StatusBadRequest, fragment.BadRequest(err))
		return
	}
	writeFragment(w, http.StatusOK, fragment.SelectiveData(body, a.now()))
}

// IndexHandler serves the demo page. WebSocket upgrade requests on the root
// path join the chat, since the socket shares the HTTP port.
func (a *App) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		a.WebSocketHandler(w, r)
		return
	}
	http.ServeFileFS(w, r, a.static, indexFile)
}

// WebSocketHandler upgrades the connection, creates a Client, and registers
// it with the hub, which launches the read and write pumps.
func (a *App) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, a.hub, r.RemoteAddr, a.config.MaxMessageSize)
	if !a.hub.Register(client) {
		log.Printf("Hub is shutting down; closing connection from %s", r.RemoteAddr)
		_ = conn.Close()
	}
}
