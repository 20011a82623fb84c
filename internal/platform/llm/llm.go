// Package llm wraps the generative text providers behind one request shape:
// a model id, a prompt, and optionally a response schema and temperature.
package llm

import (
	"context"
	"errors"
	"strings"
)

var ErrNotConfigured = errors.New("llm provider not configured")

type Request struct {
	Model       string
	Prompt      string
	Schema      *Schema
	Temperature *float32
}

type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

type Client interface {
	Provider() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// Schema is the provider-neutral subset of JSON schema used for structured
// responses. Type uses JSON schema names ("object", "string").
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	// Ordering of Properties for providers that honour it.
	Order []string `json:"-"`
}

func Temperature(v float32) *float32 { return &v }

type unavailable struct {
	provider string
	reason   error
}

// Unavailable returns a client whose every call fails with ErrNotConfigured.
// The app wires it when no API key is present so pages still render.
func Unavailable(provider string, reason error) Client {
	return &unavailable{provider: provider, reason: reason}
}

func (u *unavailable) Provider() string { return u.provider }

func (u *unavailable) Generate(ctx context.Context, req Request) (Response, error) {
	if u.reason != nil {
		return Response{}, errors.Join(ErrNotConfigured, u.reason)
	}
	return Response{}, ErrNotConfigured
}

func pickModel(reqModel, def string) string {
	if m := strings.TrimSpace(reqModel); m != "" {
		return m
	}
	return def
}
