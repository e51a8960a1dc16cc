package gateway

import (
	"context"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/transcript"
)

type MessageType string

// Control messages sent by the client.
const (
	MessageTypeStart            MessageType = "start"
	MessageTypeStop             MessageType = "stop"
	MessageTypeRestart          MessageType = "restart"
	MessageTypeSearch           MessageType = "search"
	MessageTypeSilenceDetection MessageType = "silence_detection"
	MessageTypeReconfig         MessageType = "reconfig"
	MessageTypeLookup           MessageType = "lookup"
)

// Messages sent to the client. start, stop, search and lookup are shared
// with the control set.
const (
	MessageTypeReady     MessageType = "ready"
	MessageTypeUtterance MessageType = "utterance"
	MessageTypeFinal     MessageType = "final"
	MessageTypeSpeech    MessageType = "speech"
	MessageTypeSilence   MessageType = "silence"
	MessageTypeError     MessageType = "error"
)

type ClientMessage struct {
	Type    MessageType    `json:"type"`
	Name    string         `json:"name,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
	Options map[string]any `json:"options,omitempty"`
	Words   []string       `json:"words,omitempty"`
}

type ServerMessage struct {
	Type       MessageType `json:"type"`
	SessionID  string      `json:"session_id,omitempty"`
	Phrase     string      `json:"phrase,omitempty"`
	Score      *int32      `json:"score,omitempty"`
	IsFinal    *bool       `json:"is_final,omitempty"`
	Search     string      `json:"search,omitempty"`
	SampleRate int         `json:"sample_rate,omitempty"`
	Enabled    *bool       `json:"enabled,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	Message    string      `json:"message,omitempty"`
	*LookupPayload
	Timestamp time.Time `json:"timestamp"`
}

type LookupPayload struct {
	Found   map[string]string `json:"found"`
	Missing []string          `json:"missing"`
}

// TranscriptSink records final hypotheses. *transcript.Store implements it.
type TranscriptSink interface {
	Begin(ctx context.Context, t *transcript.Transcript) error
	Append(ctx context.Context, id string, entry transcript.Entry) error
	End(ctx context.Context, id string) error
	IncrementErrors(ctx context.Context) error
}

// WordSource supplies the custom lexicon. *lexicon.Store implements it.
type WordSource interface {
	All(ctx context.Context) (map[string]string, error)
}
