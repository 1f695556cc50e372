// Package http serves the MyKharche pages, drawers and auth screens.
//
// This file builds HTMX responses: HX-Trigger events, redirects and
// HTML fragments.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"mykharche/internal/services"
)

// Toast display durations in milliseconds.
const (
	successToastMs = 3000
	errorToastMs   = 5000
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerNotification adds the show-notification event read by app.js.
func (b *HTMXResponseBuilder) TriggerNotification(status, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     status,
		"message":  message,
		"duration": durationMs,
	})
}

// Toast turns a service toast into a notification. A nil toast is ignored.
func (b *HTMXResponseBuilder) Toast(t *services.Toast) *HTMXResponseBuilder {
	if t == nil {
		return b
	}
	duration := successToastMs
	if t.Status == services.ToastError {
		duration = errorToastMs
	}
	return b.TriggerNotification(t.Status, t.Message, duration)
}

// TriggerDrawerClosed tells the page the drawer went away.
func (b *HTMXResponseBuilder) TriggerDrawerClosed() *HTMXResponseBuilder {
	return b.Trigger("drawer:closed", struct{}{})
}

// Redirect sets HX-Redirect so htmx performs a full navigation.
func (b *HTMXResponseBuilder) Redirect(to string) *HTMXResponseBuilder {
	return b.Header("HX-Redirect", to)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body as HTML content.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	return b.Body([]byte(html))
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an escaped error fragment.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
