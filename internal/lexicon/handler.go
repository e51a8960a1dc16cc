package lexicon

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

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
		logger: logger.With("component", "lexicon_handler"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.PUT("", h.Update)
	g.DELETE("/:word", h.Delete)
}

// @Summary      List custom words
// @Description  Returns every custom dictionary word and its pronunciation
// @Tags         lexicon
// @Produce      json
// @Success      200  {object}  dto.LexiconResponse
// @Failure      500  {object}  shared.APIError
// @Router       /lexicon [get]
func (h *Handler) List(c echo.Context) error {
	words, err := h.store.All(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list lexicon", "error", err)
		return shared.InternalError("list_failed", "failed to list lexicon")
	}
	return c.JSON(http.StatusOK, dto.LexiconResponse{Words: words})
}

// @Summary      Add or replace custom words
// @Description  Upserts word pronunciations. New recognizer sessions pick them up on connect.
// @Tags         lexicon
// @Accept       json
// @Produce      json
// @Param        request  body      dto.UpdateLexiconRequest  true  "Word to pronunciation map"
// @Success      200      {object}  dto.LexiconResponse
// @Failure      400      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Router       /lexicon [put]
func (h *Handler) Update(c echo.Context) error {
	var req dto.UpdateLexiconRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if len(req) == 0 {
		return shared.BadRequest("invalid_request", "at least one word is required")
	}

	if problems := validate(req); len(problems) > 0 {
		return shared.NewAPIError("invalid_words", "some words are invalid").
			WithDetails(problems).
			ToHTTP(http.StatusBadRequest)
	}

	ctx := c.Request().Context()
	if err := h.store.Upsert(ctx, req); err != nil {
		h.logger.Error("failed to update lexicon", "error", err)
		return shared.InternalError("update_failed", "failed to update lexicon")
	}

	words, err := h.store.All(ctx)
	if err != nil {
		h.logger.Error("failed to list lexicon", "error", err)
		return shared.InternalError("list_failed", "failed to list lexicon")
	}
	h.logger.Info("lexicon updated", "words", len(req), "total", len(words))
	return c.JSON(http.StatusOK, dto.LexiconResponse{Words: words})
}

// @Summary      Delete a custom word
// @Tags         lexicon
// @Param        word  path  string  true  "Word"
// @Success      204   "No Content"
// @Failure      404   {object}  shared.APIError
// @Failure      500   {object}  shared.APIError
// @Router       /lexicon/{word} [delete]
func (h *Handler) Delete(c echo.Context) error {
	word := c.Param("word")

	if err := h.store.Delete(c.Request().Context(), word); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("word_not_found", "word not found")
		}
		h.logger.Error("failed to delete word", "error", err, "word", word)
		return shared.InternalError("delete_failed", "failed to delete word")
	}
	return c.NoContent(http.StatusNoContent)
}

func validate(words map[string]string) []dto.ValidationError {
	var problems []dto.ValidationError
	for w, p := range words {
		word, pron := Normalize(w, p)
		switch {
		case word == "":
			problems = append(problems, dto.ValidationError{Field: w, Message: "word is required"})
		case pron == "":
			problems = append(problems, dto.ValidationError{Field: w, Message: "pronunciation is required"})
		}
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Field < problems[j].Field })
	return problems
}
