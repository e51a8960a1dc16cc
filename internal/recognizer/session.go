// Package recognizer wraps a streaming decoder in a session: a state
// machine that owns one engine handle, feeds it PCM16 audio and reports
// hypotheses and lifecycle changes through registered event handlers.
//
// Every failure is raised as an error event, and is also returned by
// operations that return an error.
//
// All engine calls for a session are serialized on the session mutex. Event
// handlers run with the mutex released and may call back into the session.
package recognizer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/google/uuid"
)

type State int

const (
	StateCreated State = iota
	StateReady
	StateProcessing
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateReady:
		return "ready"
	case StateProcessing:
		return "processing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

type Config struct {
	ModelDir string
	Options  Options
	// Hyp, when set, is bound to the hyp event.
	Hyp HypFunc
}

type Session struct {
	id      string
	builder *ConfigBuilder
	events  *registry
	queue   *decodeQueue
	log     *slog.Logger

	mu               sync.Mutex
	state            State
	dec              engine.Decoder
	cfg              *engine.Config
	speechDetected   bool
	silenceDetection bool
}

func New(eng engine.Engine, cfg Config, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	s := &Session{
		id:               id,
		builder:          NewConfigBuilder(eng, cfg.ModelDir),
		events:           newRegistry(),
		log:              log.With("component", "recognizer", "session_id", id),
		state:            StateCreated,
		silenceDetection: true,
	}
	s.queue = newDecodeQueue(s.decode)

	if cfg.Hyp != nil {
		s.events.on(EventHyp, cfg.Hyp)
	}

	built, err := s.builder.Build(cfg.Options)
	if err != nil {
		return nil, err
	}
	dec, err := eng.Open(built)
	if err != nil {
		return nil, operationError("new", "failed to create decoder", err)
	}

	s.dec = dec
	s.cfg = built
	s.state = StateReady
	s.log.Debug("recognizer created", "engine", eng.Name(), "config", describe(built))
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) On(e Event, h Handler) error {
	if err := s.events.on(e, h); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Session) Off(e Event) {
	s.events.off(e)
}

// fail logs err, raises it as an error event and returns it.
func (s *Session) fail(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = operationError("recognizer", "unexpected failure", err)
	}
	if e.Kind == KindValidation {
		s.log.Debug("recognizer validation failed", "op", e.Op, "error", e)
	} else {
		s.log.Warn("recognizer operation failed", "op", e.Op, "error", e)
	}
	s.events.raise(e)
	return e
}

func closedError(op string) *Error {
	return operationError(op, "recognizer has been freed", ErrClosed)
}

func (s *Session) Start() error {
	s.mu.Lock()
	switch s.state {
	case StateDestroyed:
		s.mu.Unlock()
		return s.fail(closedError("start"))
	case StateProcessing:
		s.mu.Unlock()
		return s.fail(operationError("start", "processing seems to run already", nil))
	}
	if err := s.dec.StartUtterance(); err != nil {
		s.mu.Unlock()
		return s.fail(operationError("start", "failed to start processing", err))
	}
	s.state = StateProcessing
	s.speechDetected = false
	s.mu.Unlock()

	s.events.signal(EventStart)
	return nil
}

// Stop closes the utterance and then reports its final hypothesis. It
// does nothing unless the session is processing. The hypothesis is read
// and the utterance ended under one hold of the lock, so async jobs still
// queued are skipped rather than decoded after the final result.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		return nil
	}
	text, final := s.dec.FinalHypothesis()
	if err := s.dec.EndUtterance(); err != nil {
		s.mu.Unlock()
		return s.fail(operationError("stop", "failed to end processing", err))
	}
	s.state = StateReady
	s.mu.Unlock()

	s.events.hypFinal(text, final)
	s.events.signal(EventStop)
	return nil
}

func (s *Session) Restart() error {
	if s.State() == StateProcessing {
		if err := s.Stop(); err != nil {
			return err
		}
	}
	return s.Start()
}

// Reconfig rebuilds the engine configuration and reinitializes the decoder
// in place, restarting processing if it was running. A failed reinit rolls
// the decoder back to the previous configuration and leaves the session
// ready. hyp, when non-nil, replaces the hyp handler.
func (s *Session) Reconfig(opts Options, hyp HypFunc) error {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return s.fail(closedError("reconfig"))
	}
	if hyp != nil {
		s.events.on(EventHyp, hyp)
	}

	built, err := s.builder.Build(opts)
	if err != nil {
		s.mu.Unlock()
		return s.fail(err)
	}

	wasProcessing := s.state == StateProcessing
	if wasProcessing {
		if err := s.dec.EndUtterance(); err != nil {
			s.log.Debug("end utterance before reinit failed", "error", err)
		}
	}
	s.state = StateReady
	if err := s.dec.Reinit(built); err != nil {
		if rerr := s.dec.Reinit(s.cfg); rerr != nil {
			s.log.Error("decoder rollback failed", "error", rerr)
		}
		s.mu.Unlock()
		return s.fail(operationError("reconfig", "could not reinit decoder", err))
	}
	s.cfg = built
	s.mu.Unlock()

	s.log.Debug("recognizer reconfigured", "config", describe(built), "restart", wasProcessing)
	if wasProcessing {
		return s.Start()
	}
	return nil
}

// Free releases the decoder. Later calls, and every other operation after
// it, are safe: they do nothing or report ErrClosed. Queued asynchronous
// jobs are dropped without touching the decoder.
func (s *Session) Free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed {
		return
	}
	s.state = StateDestroyed
	s.queue.close()
	if err := s.dec.Close(); err != nil {
		s.log.Warn("failed to free decoder", "error", err)
	}
	s.dec = nil
	s.log.Debug("recognizer freed")
}

// SampleRate is the input rate the decoder is configured for.
func (s *Session) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.cfg.Float(engine.ParamSampleRate); ok && f > 0 {
		return int(f)
	}
	return DefaultSampleRate
}

func (s *Session) SetSilenceDetection(enabled bool) {
	s.mu.Lock()
	s.silenceDetection = enabled
	s.mu.Unlock()
}

func (s *Session) SilenceDetection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.silenceDetection
}

// Flush waits until every asynchronous job submitted so far has completed.
func (s *Session) Flush(ctx context.Context) error {
	j := s.queue.last()
	if j == nil {
		return nil
	}
	select {
	case <-j.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
