package audio

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/dto"
	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/eleven-am/voice-recognizer/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	maxFileSize          = 25 * 1024 * 1024
	transcriptionTimeout = 5 * time.Minute
)

// WordSource supplies the custom words added to every session.
type WordSource interface {
	All(ctx context.Context) (map[string]string, error)
}

type Handler struct {
	engine  engine.Engine
	profile recognizer.Profile
	words   WordSource
	logger  *slog.Logger
}

func NewHandler(eng engine.Engine, profile recognizer.Profile, words WordSource, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:  eng,
		profile: profile,
		words:   words,
		logger:  logger.With("handler", "audio"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/transcriptions", h.HandleTranscriptions)
}

// HandleTranscriptions transcribes an uploaded audio file
// @Summary      Create transcription
// @Description  Decodes an uploaded FLAC or raw PCM file and runs it through a recognizer session configured like a streaming one. Each utterance closed by silence becomes one segment.
// @Tags         audio
// @Accept       multipart/form-data
// @Produce      json,text/plain
// @Param        file formData file true "Audio file to transcribe (max 25MB)"
// @Param        format formData string false "flac, s16le or f32le. Sniffed when empty."
// @Param        sample_rate formData int false "Sample rate of raw input"
// @Param        keyphrase formData string false "Keyphrase to spot instead of the server default search"
// @Param        response_format formData string false "Output format: json, text, or verbose_json" default(json)
// @Success      200 {object} dto.TranscriptionResponse "Transcription result (json format)"
// @Success      200 {object} dto.VerboseTranscriptionResponse "Transcription result with segments (verbose_json format)"
// @Success      200 {string} string "Plain text transcription (text format)"
// @Failure      400 {object} shared.APIError "Invalid request (missing file, bad format)"
// @Failure      413 {object} shared.APIError "File too large (max 25MB)"
// @Failure      500 {object} shared.APIError "Transcription failed"
// @Router       /audio/transcriptions [post]
func (h *Handler) HandleTranscriptions(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "File is required")
	}

	if file.Size > maxFileSize {
		return shared.TooLarge("file_too_large", "File too large (max 25MB)")
	}

	var format Format
	if f := c.FormValue("format"); f != "" {
		if format, err = ParseFormat(f); err != nil {
			return shared.BadRequest("invalid_format", err.Error())
		}
	}

	rate := 0
	if r := c.FormValue("sample_rate"); r != "" {
		if rate, err = strconv.Atoi(r); err != nil || rate <= 0 {
			return shared.BadRequest("invalid_sample_rate", "sample_rate must be a positive integer")
		}
	}

	responseFormat := c.FormValue("response_format")
	if responseFormat == "" {
		responseFormat = "json"
	}

	src, err := file.Open()
	if err != nil {
		return shared.InternalError("file_error", "Failed to open file")
	}
	defer src.Close()

	pcm, err := Decode(src, format, rate)
	if err != nil {
		return shared.BadRequest("decode_failed", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), transcriptionTimeout)
	defer cancel()

	profile := h.profile
	if kp := c.FormValue("keyphrase"); kp != "" {
		profile.Keyphrase = kp
		profile.GrammarName, profile.GrammarFile = "", ""
	}

	var words map[string]string
	if h.words != nil {
		if words, err = h.words.All(ctx); err != nil {
			h.logger.Warn("failed to load lexicon", "error", err)
		}
	}

	result, err := BatchTranscribe(ctx, h.engine, BatchConfig{
		Profile: profile,
		Words:   words,
		Logger:  h.logger,
	}, pcm)
	if err != nil {
		h.logger.Error("transcription failed", "error", err, "filename", file.Filename)
		if recognizer.IsValidation(err) {
			return shared.BadRequest("invalid_request", err.Error())
		}
		return shared.InternalError("transcription_failed", "Transcription failed")
	}

	switch responseFormat {
	case "text":
		return c.String(http.StatusOK, result.Text)
	case "verbose_json":
		segments := make([]dto.TranscriptionSegment, 0, len(result.Segments))
		for i, seg := range result.Segments {
			segments = append(segments, dto.TranscriptionSegment{
				ID:    i,
				Start: seg.Start.Seconds(),
				End:   seg.End.Seconds(),
				Text:  seg.Text,
			})
		}
		return c.JSON(http.StatusOK, dto.VerboseTranscriptionResponse{
			Text:     result.Text,
			Duration: result.AudioDuration.Seconds(),
			Search:   result.Search,
			Segments: segments,
		})
	}

	return c.JSON(http.StatusOK, dto.TranscriptionResponse{
		Text: result.Text,
	})
}
