package recognizer

import "sync"

type Event string

const (
	EventHyp             Event = "hyp"
	EventHypFinal        Event = "hypFinal"
	EventStart           Event = "start"
	EventStop            Event = "stop"
	EventSpeechDetected  Event = "speechDetected"
	EventSilenceDetected Event = "silenceDetected"
	EventError           Event = "error"
)

// Handler is one of HypFunc, HypFinalFunc, SignalFunc or ErrorFunc.
type Handler interface {
	accepts(e Event) bool
}

type (
	HypFunc      func(text string, score int32)
	HypFinalFunc func(text string, final bool)
	SignalFunc   func()
	ErrorFunc    func(err *Error)
)

func (HypFunc) accepts(e Event) bool { return e == EventHyp }
func (HypFinalFunc) accepts(e Event) bool { return e == EventHypFinal }
func (ErrorFunc) accepts(e Event) bool { return e == EventError }

func (SignalFunc) accepts(e Event) bool {
	switch e {
	case EventStart, EventStop, EventSpeechDetected, EventSilenceDetected:
		return true
	}
	return false
}

func knownEvent(e Event) bool {
	switch e {
	case EventHyp, EventHypFinal, EventStart, EventStop, EventSpeechDetected, EventSilenceDetected, EventError:
		return true
	}
	return false
}

// registry holds one handler per event. Handlers run on the goroutine that
// raises the event, with no registry lock held.
type registry struct {
	mu       sync.RWMutex
	handlers map[Event]Handler
}

func newRegistry() *registry {
	return &registry{handlers: make(map[Event]Handler)}
}

func (r *registry) on(e Event, h Handler) error {
	if !knownEvent(e) {
		return nil
	}
	if h == nil || isNilHandler(h) {
		return validationError("on", "expected a handler for %s", e)
	}
	if !h.accepts(e) {
		return validationError("on", "handler type %T does not match event %s", h, e)
	}
	r.mu.Lock()
	r.handlers[e] = h
	r.mu.Unlock()
	return nil
}

func (r *registry) off(e Event) {
	r.mu.Lock()
	delete(r.handlers, e)
	r.mu.Unlock()
}

func (r *registry) get(e Event) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[e]
}

func isNilHandler(h Handler) bool {
	switch f := h.(type) {
	case HypFunc:
		return f == nil
	case HypFinalFunc:
		return f == nil
	case SignalFunc:
		return f == nil
	case ErrorFunc:
		return f == nil
	}
	return false
}

func (r *registry) hyp(text string, score int32) {
	if f, ok := r.get(EventHyp).(HypFunc); ok {
		f(text, score)
	}
}

func (r *registry) hypFinal(text string, final bool) {
	if f, ok := r.get(EventHypFinal).(HypFinalFunc); ok {
		f(text, final)
	}
}

func (r *registry) signal(e Event) {
	if f, ok := r.get(e).(SignalFunc); ok {
		f()
	}
}

func (r *registry) raise(err *Error) {
	if f, ok := r.get(EventError).(ErrorFunc); ok {
		f(err)
	}
}
