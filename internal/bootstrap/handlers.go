package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/voice-recognizer/internal/audio"
	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/gateway"
	"github.com/eleven-am/voice-recognizer/internal/lexicon"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/eleven-am/voice-recognizer/internal/transcript"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	GatewayHandler    *gateway.Handler
	TranscriptHandler *transcript.Handler
	LexiconHandler    *lexicon.Handler
	AudioHandler      *audio.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api/v1")

	params.GatewayHandler.RegisterRoutes(api.Group("/recognize"))
	params.TranscriptHandler.RegisterRoutes(api.Group("/transcripts"))
	params.LexiconHandler.RegisterRoutes(api.Group("/lexicon"))
	params.AudioHandler.RegisterRoutes(api.Group("/audio"))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return logger
}

func ProvideTranscriptHandler(store *transcript.Store, logger *slog.Logger) *transcript.Handler {
	return transcript.NewHandler(store, logger.With("handler", "transcript"))
}

func ProvideLexiconHandler(store *lexicon.Store, logger *slog.Logger) *lexicon.Handler {
	return lexicon.NewHandler(store, logger.With("handler", "lexicon"))
}

func ProvideAudioHandler(eng engine.Engine, profile recognizer.Profile, words *lexicon.Store, logger *slog.Logger) *audio.Handler {
	return audio.NewHandler(eng, profile, words, logger.With("handler", "audio"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideTranscriptHandler,
		ProvideLexiconHandler,
		ProvideAudioHandler,
	),
	fx.Invoke(RegisterRoutes),
)
