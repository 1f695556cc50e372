package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mykharche/internal/services"
)

// maxFormBytes caps form bodies. Every form here is a handful of short fields.
const maxFormBytes = 64 << 10

// RequestBodyParser reads a form posted either url-encoded or as JSON
// (htmx json-enc). The body is read once.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the request body, capped at maxFormBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	return p
}

// Parse decodes the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json form: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	if p.err != nil {
		p.err = fmt.Errorf("decode form: %w", p.err)
	}
	return p.err
}

// Get returns a sanitized, trimmed value.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.raw(key))
}

// Secret returns a value untouched, for passwords.
func (p *RequestBodyParser) Secret(key string) string {
	return p.raw(key)
}

// Checked reports whether a checkbox was sent with a truthy value.
func (p *RequestBodyParser) Checked(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (p *RequestBodyParser) raw(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads and parses the request form.
func parseBody(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p, nil
}

// expenseFields reads the expense drawer form.
func expenseFields(p *RequestBodyParser) (date string, in services.ExpenseInput) {
	return p.Get("date"), services.ExpenseInput{
		ItemName:   p.Get("itemName"),
		Amount:     p.Get("amount"),
		CategoryID: p.Get("categoryId"),
	}
}

// incomeFields reads the income drawer form.
func incomeFields(p *RequestBodyParser) (date string, in services.IncomeInput) {
	return p.Get("date"), services.IncomeInput{
		Amount:     p.Get("amount"),
		CategoryID: p.Get("categoryId"),
	}
}

// sanitizeInput removes control characters except tab, newline and carriage return, then trims.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
