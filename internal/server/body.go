// Package server decodes JSON and URL-encoded request bodies into the typed
// inputs each endpoint accepts.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

const maxBodyBytes = 1 << 20

// formBinder is implemented by endpoint inputs that can also be filled from
// URL-encoded form values.
type formBinder interface {
	bindForm(values url.Values)
}

// todoInput is the body accepted by POST /api/todos.
type todoInput struct {
	Task string `json:"task"`
}

func (in *todoInput) bindForm(values url.Values) {
	in.Task = values.Get("task")
}

// submitInput is the body accepted by POST /api/submit.
type submitInput struct {
	Username string `json:"username"`
}

func (in *submitInput) bindForm(values url.Values) {
	in.Username = values.Get("username")
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// bindInput fills dst from a JSON body or from URL-encoded form values.
// An empty body leaves dst at its zero value.
func bindInput(w http.ResponseWriter, r *http.Request, dst formBinder) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode JSON body: %w", err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form body: %w", err)
	}
	dst.bindForm(r.PostForm)
	return nil
}

// decodeAnyBody returns the parsed body as generic data: any JSON value, or a
// map of form fields where repeated fields become lists.
func decodeAnyBody(w http.ResponseWriter, r *http.Request) (any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSONRequest(r) {
		var body any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return map[string]any{}, nil
			}
			return nil, fmt.Errorf("decode JSON body: %w", err)
		}
		return body, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form body: %w", err)
	}

	body := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 1 {
			body[key] = values[0]
			continue
		}
		body[key] = values
	}
	return body, nil
}
