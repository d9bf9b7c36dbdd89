// Package server wires HTTP handlers into a ServeMux for the playground
// via a static route table.
package server

import (
	"net/http"

	"github.com/Tyrowin/htmx-playground/internal/fragment"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

// routes is the dispatch table of the application.
func (a *App) routes() []route {
	return []route{
		{"GET /api/hello", a.timed(fragment.Hello)},
		{"GET /api/slow-data", a.SlowDataHandler},
		{"POST /api/submit", a.SubmitHandler},
		{"GET /api/search", a.SearchHandler},
		{"GET /api/hover", a.numbered(fragment.Hover, 1000)},
		{"GET /api/todos", a.ListTodosHandler},
		{"POST /api/todos", a.CreateTodoHandler},
		{"DELETE /api/todos/{id}", a.DeleteTodoHandler},
		{"GET /api/poll", a.numbered(fragment.Poll, 100)},
		{"GET /api/fade-content", a.timed(fragment.FadeContent)},
		{"GET /api/error-demo", a.ErrorDemoHandler},
		{"GET /api/success-after-error", a.timed(fragment.SuccessAfterError)},
		{"GET /api/live-time", a.timed(fragment.LiveTime)},
		{"GET /api/update-multiple", a.timed(fragment.UpdateMultiple)},
		{"GET /api/add-item", a.numbered(fragment.AddItem, 1000)},
		{"GET /api/event-demo", a.timed(fragment.EventDemo)},
		{"GET /api/headers-demo", a.HeadersDemoHandler},
		{"POST /api/selective-data", a.SelectiveDataHandler},
		{"GET /api/swap-inner", fixed(fragment.SwapInner)},
		{"GET /api/swap-outer", fixed(fragment.SwapOuter)},
		{"GET /api/swap-beforeend", fixed(fragment.SwapBeforeEnd)},
		{"GET /api/swap-afterbegin", fixed(fragment.SwapAfterBegin)},
		{"GET /ws", a.WebSocketHandler},
		{"GET /{$}", a.IndexHandler},
		{"GET /", http.FileServerFS(a.static).ServeHTTP},
	}
}

// SetupRoutes builds the ServeMux for app and wraps it with CORS and access
// logging.
func SetupRoutes(app *App) http.Handler {
	mux := http.NewServeMux()
	for _, rt := range app.routes() {
		mux.HandleFunc(rt.pattern, rt.handler)
	}
	return withRequestLog(app.origins.withCORS(mux))
}
