package transcript

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/dto"
	"github.com/eleven-am/voice-recognizer/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("component", "transcript_handler"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/metrics", h.GetMetrics)
	g.GET("/:id", h.GetTranscript)
}

func transcriptToResponse(t *Transcript, entries []Entry) dto.TranscriptResponse {
	resp := dto.TranscriptResponse{
		ID:         t.ID,
		Engine:     t.Engine,
		Search:     t.Search,
		SampleRate: t.SampleRate,
		Status:     string(t.Status),
		StartedAt:  t.StartedAt.UTC().Format(time.RFC3339),
		Entries:    make([]dto.TranscriptEntryResponse, len(entries)),
	}
	if t.EndedAt != nil {
		ended := t.EndedAt.UTC().Format(time.RFC3339)
		resp.EndedAt = &ended
	}
	for i, e := range entries {
		resp.Entries[i] = dto.TranscriptEntryResponse{
			Text:  e.Text,
			Final: e.Final,
			At:    e.At.UTC().Format(time.RFC3339),
		}
	}
	return resp
}

// @Summary      Get a transcript
// @Description  Returns a recognizer session record and its final hypotheses
// @Tags         transcripts
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.TranscriptResponse
// @Failure      404  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /transcripts/{id} [get]
func (h *Handler) GetTranscript(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	t, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("transcript_not_found", "transcript not found")
		}
		h.logger.Error("failed to get transcript", "error", err, "session_id", id)
		return shared.InternalError("get_failed", "failed to get transcript")
	}

	entries, err := h.store.List(ctx, id)
	if err != nil {
		h.logger.Error("failed to list transcript entries", "error", err, "session_id", id)
		return shared.InternalError("get_failed", "failed to get transcript")
	}

	return c.JSON(http.StatusOK, transcriptToResponse(t, entries))
}

// @Summary      Get recognition metrics
// @Description  Returns hourly session, utterance and error counters
// @Tags         transcripts
// @Produce      json
// @Param        hours  query     int  false  "Number of hours (1-168)"  default(24)
// @Success      200    {object}  dto.MetricsListResponse
// @Failure      500    {object}  shared.APIError
// @Router       /transcripts/metrics [get]
func (h *Handler) GetMetrics(c echo.Context) error {
	hours := 24
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		if hr, err := strconv.Atoi(hoursStr); err == nil && hr > 0 && hr <= 168 {
			hours = hr
		}
	}

	metrics, err := h.store.GetMetrics(c.Request().Context(), hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}

	response := make([]dto.MetricsResponse, len(metrics))
	for i, m := range metrics {
		response[i] = dto.MetricsResponse{
			Date:       m.Date,
			Hour:       m.Hour,
			Sessions:   m.Sessions,
			Utterances: m.Utterances,
			Errors:     m.Errors,
		}
	}

	return c.JSON(http.StatusOK, dto.MetricsListResponse{
		Hours:   hours,
		Metrics: response,
	})
}
