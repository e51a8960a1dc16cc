//go:build !pocketsphinx

package pocketsphinx

import "github.com/eleven-am/voice-recognizer/internal/engine"

// Engine stands in for the native binding in builds without the
// pocketsphinx tag.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string { return "pocketsphinx" }

func (e *Engine) Has(name string) bool {
	return engine.StandardParams.Has(name)
}

func (e *Engine) Open(*engine.Config) (engine.Decoder, error) {
	return nil, engine.ErrUnavailable
}
