// Package server assembles the application state shared by the HTTP handlers
// and the chat hub.
package server

import (
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/htmx-playground/internal/todo"
	"github.com/Tyrowin/htmx-playground/web"
)

// App owns the todo store, the chat hub and everything the handlers need.
// It replaces process-wide globals: one App lives for the life of the server.
type App struct {
	config   Config
	origins  originPolicy
	hub      *Hub
	todos    *todo.Store
	upgrader websocket.Upgrader
	static   fs.FS
	now      func() time.Time
	randIntN func(n int) int
}

// Option customizes an App at construction.
type Option func(*App)

// WithClock replaces the wall clock used in fragments and chat records.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
		a.hub.now = now
	}
}

// WithRandom replaces the source of the random numbers shown by demo fragments.
func WithRandom(intN func(n int) int) Option {
	return func(a *App) {
		a.randIntN = intN
	}
}

// WithStaticFS serves the page and static assets from fsys.
func WithStaticFS(fsys fs.FS) Option {
	return func(a *App) {
		a.static = fsys
	}
}

// NewApp builds the application from cfg. A nil cfg uses defaults.
func NewApp(cfg *Config, opts ...Option) *App {
	if cfg == nil {
		cfg = NewConfig()
	}
	sanitized := sanitizeConfig(*cfg)

	app := &App{
		config:   sanitized,
		origins:  newOriginPolicy(sanitized.AllowedOrigins),
		hub:      NewHub(sanitized.HeartbeatInterval),
		todos:    todo.NewStore(),
		static:   web.Assets(),
		now:      time.Now,
		randIntN: rand.IntN,
	}
	if sanitized.StaticDir != "" {
		app.static = os.DirFS(sanitized.StaticDir)
	}
	app.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     app.origins.checkOrigin,
	}

	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Config returns the sanitized configuration the app runs with.
func (a *App) Config() Config {
	cfg := a.config
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// Hub returns the chat hub for shutdown coordination.
func (a *App) Hub() *Hub {
	return a.hub
}

// Todos returns the todo store backing the todo endpoints.
func (a *App) Todos() *todo.Store {
	return a.todos
}

// StartHub runs the hub event loop and heartbeat in the background.
// This should be called before starting the HTTP server.
func (a *App) StartHub() {
	go a.hub.Run()
	log.Printf("Hub started; heartbeat every %s", a.config.HeartbeatInterval)
}
