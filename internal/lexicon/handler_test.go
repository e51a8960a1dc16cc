package lexicon

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eleven-am/voice-recognizer/internal/dto"
	"github.com/eleven-am/voice-recognizer/internal/shared"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *Store) {
	store := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, logger), store
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e.Group("/lexicon"))

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{"GET /lexicon", "PUT /lexicon", "DELETE /lexicon/:word"} {
		if !routes[want] {
			t.Errorf("expected route %s to be registered", want)
		}
	}
}

func TestHandler_List(t *testing.T) {
	h, store := newTestHandler(t)
	store.Upsert(context.Background(), map[string]string{"hello": "HH AH L OW"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/lexicon", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp dto.LexiconResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Words["hello"] != "HH AH L OW" {
		t.Errorf("unexpected words %v", resp.Words)
	}
}

func TestHandler_Update(t *testing.T) {
	h, store := newTestHandler(t)

	e := echo.New()
	body := `{"hello": "HH AH L OW", "world": "W ER L D"}`
	req := httptest.NewRequest(http.MethodPut, "/lexicon", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	words, _ := store.All(context.Background())
	if len(words) != 2 {
		t.Errorf("expected 2 stored words, got %v", words)
	}
}

func TestHandler_Update_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"hello": `},
		{"empty", `{}`},
		{"empty pronunciation", `{"hello": ""}`},
		{"blank word", `{" ": "AH"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			e := echo.New()
			req := httptest.NewRequest(http.MethodPut, "/lexicon", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Update(c)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %v", err)
			}
			if he.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", he.Code)
			}
		})
	}
}

func TestHandler_Update_Details(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/lexicon", strings.NewReader(`{"hello": " ", "ok": "OW K EY"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	he := h.Update(c).(*echo.HTTPError)
	apiErr, ok := he.Message.(*shared.APIError)
	if !ok {
		t.Fatalf("expected APIError message, got %T", he.Message)
	}
	problems, ok := apiErr.Details.([]dto.ValidationError)
	if !ok || len(problems) != 1 || problems[0].Field != "hello" {
		t.Errorf("unexpected details %v", apiErr.Details)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, store := newTestHandler(t)
	store.Upsert(context.Background(), map[string]string{"hello": "HH AH L OW"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/lexicon/hello", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("word")
	c.SetParamValues("hello")

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
}

func TestHandler_Delete_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/lexicon/missing", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("word")
	c.SetParamValues("missing")

	he, ok := h.Delete(c).(*echo.HTTPError)
	if !ok {
		t.Fatal("expected echo.HTTPError")
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", he.Code)
	}
}
