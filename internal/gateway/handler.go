package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/audio"
	"github.com/eleven-am/voice-recognizer/internal/dto"
	"github.com/eleven-am/voice-recognizer/internal/shared"
	"github.com/eleven-am/voice-recognizer/internal/transcript"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	manager     *SessionManager
	transcripts TranscriptSink
	logger      *slog.Logger
}

func NewHandler(manager *SessionManager, transcripts TranscriptSink, logger *slog.Logger) *Handler {
	return &Handler{
		manager:     manager,
		transcripts: transcripts,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleRecognize)
	g.GET("/sessions", h.ListSessions)
}

// HandleRecognize godoc
// @Summary      Stream audio for recognition
// @Description  Upgrades to a websocket bound to one recognizer session. Binary frames are audio in the requested format; text frames are JSON control messages. Hypotheses and session events are sent back as JSON.
// @Tags         recognize
// @Param        format  query  string  false  "f32 (little-endian float32) or s16 (little-endian PCM16)"  default(f32)
// @Param        rate    query  int     false  "Sample rate of the client audio. Defaults to the engine rate."
// @Success      101  "Switching Protocols"
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /recognize/ws [get]
func (h *Handler) HandleRecognize(c echo.Context) error {
	format := audio.FormatF32LE
	if f := c.QueryParam("format"); f != "" {
		parsed, err := audio.ParseFormat(f)
		if err != nil || parsed == audio.FormatFLAC {
			return shared.BadRequest("invalid_format", "format must be f32 or s16")
		}
		format = parsed
	}

	rate := 0
	if r := c.QueryParam("rate"); r != "" {
		parsed, err := strconv.Atoi(r)
		if err != nil || parsed <= 0 {
			return shared.BadRequest("invalid_rate", "rate must be a positive integer")
		}
		rate = parsed
	}

	ctx := c.Request().Context()
	session, err := h.manager.CreateSession(ctx, c.RealIP())
	if err != nil {
		h.logger.Error("failed to create recognizer session", "error", err)
		return shared.InternalError("session_failed", "failed to create recognizer session")
	}

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		h.manager.RemoveSession(session.ID())
		return nil
	}

	conn := newRecognizeConn(ws, session, h.manager, h.transcripts, format, rate, h.logger)
	conn.bind()
	h.beginTranscript(session.ID(), session.Search(), session.SampleRate())

	clientRate, _ := conn.rates()
	h.logger.Info("recognizer connected", "session_id", session.ID(), "format", format, "rate", clientRate)

	go conn.writePump(ctx)
	_ = session.Start()
	conn.Send(&ServerMessage{
		Type:       MessageTypeReady,
		SessionID:  session.ID(),
		Search:     session.Search(),
		SampleRate: session.SampleRate(),
	})
	conn.readPump(ctx)

	_ = session.Stop()
	h.manager.RemoveSession(session.ID())
	h.endTranscript(session.ID())

	h.logger.Info("recognizer disconnected", "session_id", session.ID())
	return nil
}

func (h *Handler) beginTranscript(id, search string, rate int) {
	if h.transcripts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	t := &transcript.Transcript{
		ID:         id,
		Engine:     h.manager.EngineName(),
		Search:     search,
		SampleRate: rate,
	}
	if err := h.transcripts.Begin(ctx, t); err != nil {
		h.logger.Warn("failed to begin transcript", "error", err, "session_id", id)
	}
}

func (h *Handler) endTranscript(id string) {
	if h.transcripts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := h.transcripts.End(ctx, id); err != nil {
		h.logger.Warn("failed to end transcript", "error", err, "session_id", id)
	}
}

// ListSessions godoc
// @Summary      List live recognizer sessions
// @Tags         recognize
// @Produce      json
// @Success      200  {object}  dto.SessionListResponse
// @Router       /recognize/sessions [get]
func (h *Handler) ListSessions(c echo.Context) error {
	sessions := h.manager.ListSessions()
	resp := dto.SessionListResponse{
		Sessions: make([]dto.SessionResponse, len(sessions)),
		Count:    len(sessions),
	}
	for i, s := range sessions {
		resp.Sessions[i] = dto.SessionResponse{
			SessionID:        s.SessionID,
			State:            s.State,
			Search:           s.Search,
			SilenceDetection: s.SilenceDetection,
			Remote:           s.Remote,
			StartedAt:        s.StartedAt.UTC().Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, resp)
}
