// Package llm define el puerto hacia modelos generativos. Los dominios (interactions,
// chat, diagnosis) dependen de esta interfaz y no del adapter concreto.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse: el modelo respondió sin texto utilizable.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrNotConfigured: no hay credenciales para el proveedor.
	ErrNotConfigured = errors.New("llm: generator not configured")
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part es texto o datos binarios inline (imagen, pdf, audio).
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

type Message struct {
	Role  string
	Parts []Part
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

type Request struct {
	Model    string
	System   string
	Messages []Message

	// JSON pide response_mime_type application/json.
	JSON            bool
	Temperature     *float64
	MaxOutputTokens int
}

type Response struct {
	Text  string
	Model string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Temperature es un helper para setear Request.Temperature en línea.
func Temperature(v float64) *float64 {
	return &v
}
