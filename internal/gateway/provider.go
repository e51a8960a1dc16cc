package gateway

import (
	"context"
	"log/slog"

	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/lexicon"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/eleven-am/voice-recognizer/internal/transcript"
	"go.uber.org/fx"
)

func ProvideSessionManager(lc fx.Lifecycle, eng engine.Engine, profile recognizer.Profile, words *lexicon.Store, logger *slog.Logger) *SessionManager {
	cfg := SessionManagerConfig{
		Engine:  eng,
		Profile: profile,
		Log:     logger,
	}
	if words != nil {
		cfg.Words = words
	}
	m := NewSessionManager(cfg)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return m.Close()
		},
	})
	return m
}

func ProvideHandler(manager *SessionManager, transcripts *transcript.Store, logger *slog.Logger) *Handler {
	var sink TranscriptSink
	if transcripts != nil {
		sink = transcripts
	}
	return NewHandler(manager, sink, logger.With("handler", "gateway"))
}

var Module = fx.Options(
	fx.Provide(
		ProvideSessionManager,
		ProvideHandler,
	),
)
