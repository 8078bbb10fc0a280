// Package view is the boundary to page rendering. Handlers hand a view name
// and a data payload to a Renderer. JSON writes the payload as-is, which is
// what API clients and tests consume.
package view

import (
	"encoding/json"
	"net/http"
)

// Data is the payload passed to a view.
type Data map[string]any

type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data Data) error
}

type page struct {
	View string `json:"view"`
	Data Data   `json:"data,omitempty"`
}

type JSON struct{}

func (JSON) Render(w http.ResponseWriter, status int, name string, data Data) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(page{View: name, Data: data})
}
