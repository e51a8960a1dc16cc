package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/engine/memory"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
)

func newTestManager(t *testing.T, words WordSource) (*SessionManager, *memory.Engine) {
	eng := memory.New(memory.Options{Hypothesize: memory.Keyphrase})
	m := NewSessionManager(SessionManagerConfig{
		Engine:  eng,
		Profile: testProfile(t),
		Words:   words,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(func() { m.Close() })
	return m, eng
}

func TestSessionManager_CreateSession(t *testing.T) {
	m, eng := newTestManager(t, nil)

	session, err := m.CreateSession(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if session.State() != recognizer.StateReady {
		t.Errorf("new session should be ready, got %s", session.State())
	}
	if session.Search() != recognizer.KeyphraseSearch {
		t.Errorf("expected keyphrase search, got %q", session.Search())
	}
	if got, ok := m.GetSession(session.ID()); !ok || got != session {
		t.Error("session should be registered")
	}
	if m.EngineName() != "memory" {
		t.Errorf("unexpected engine name %q", m.EngineName())
	}
	if eng.Stats().Opened != 1 {
		t.Errorf("expected one decoder, got %+v", eng.Stats())
	}
}

func TestSessionManager_CreateSessionFailure(t *testing.T) {
	m, eng := newTestManager(t, nil)
	eng.Fail(memory.OpOpen, errors.New("model missing"))

	if _, err := m.CreateSession(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
	if m.SessionCount() != 0 {
		t.Errorf("failed session should not be registered")
	}
}

func TestSessionManager_LexiconFailure(t *testing.T) {
	m, _ := newTestManager(t, staticWords{err: errors.New("database down")})

	session, err := m.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("lexicon failure should not block sessions: %v", err)
	}
	if session.Search() != recognizer.KeyphraseSearch {
		t.Errorf("expected keyphrase search, got %q", session.Search())
	}
}

func TestSessionManager_CustomWords(t *testing.T) {
	m, eng := newTestManager(t, staticWords{words: map[string]string{
		"hello":    "HH AH L OW",
		"computer": "K AH M P Y UW T ER",
	}})

	session, err := m.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	lookup := session.LookupWords([]string{"computer"})
	if lookup.Found["computer"] != "K AH M P Y UW T ER" {
		t.Errorf("custom word missing: %+v", lookup)
	}
	if eng.Last().Commits() != 1 {
		t.Errorf("expected one dictionary commit, got %d", eng.Last().Commits())
	}
}

func TestSessionManager_RemoveSession(t *testing.T) {
	m, eng := newTestManager(t, nil)

	session, err := m.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	m.RemoveSession(session.ID())
	m.RemoveSession(session.ID())

	if _, ok := m.GetSession(session.ID()); ok {
		t.Error("session should be gone")
	}
	if session.State() != recognizer.StateDestroyed {
		t.Errorf("session should be freed, got %s", session.State())
	}
	if eng.Stats().Closed != 1 {
		t.Errorf("expected one closed decoder, got %+v", eng.Stats())
	}
}

func TestSessionManager_ListSessions(t *testing.T) {
	m, _ := newTestManager(t, nil)

	first, _ := m.CreateSession(context.Background(), "10.0.0.1")
	time.Sleep(time.Millisecond)
	second, _ := m.CreateSession(context.Background(), "10.0.0.2")
	_ = second.Start()

	sessions := m.ListSessions()
	if len(sessions) != 2 || m.SessionCount() != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != first.ID() || sessions[0].Remote != "10.0.0.1" {
		t.Errorf("oldest session should come first, got %+v", sessions[0])
	}
	if sessions[0].State != "ready" || sessions[1].State != "processing" {
		t.Errorf("unexpected states %s, %s", sessions[0].State, sessions[1].State)
	}
	if !sessions[0].SilenceDetection {
		t.Error("profile silence detection should be on")
	}
}

func TestSessionManager_Reconfigure(t *testing.T) {
	m, _ := newTestManager(t, nil)

	session, err := m.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	session.SetSilenceDetection(false)
	session.SetSearch(memory.DefaultSearch)
	_ = session.Start()

	if err := m.Reconfigure(context.Background(), session, recognizer.Options{"-samprate": 8000}); err != nil {
		t.Fatalf("Reconfigure error: %v", err)
	}
	if session.SampleRate() != 8000 {
		t.Errorf("expected rate 8000, got %d", session.SampleRate())
	}
	if session.Search() != recognizer.KeyphraseSearch {
		t.Errorf("profile search should be restored, got %q", session.Search())
	}
	if session.SilenceDetection() {
		t.Error("client silence detection setting should survive")
	}
	if session.State() != recognizer.StateProcessing {
		t.Errorf("processing should resume, got %s", session.State())
	}

	if err := m.Reconfigure(context.Background(), session, nil); err != nil {
		t.Fatalf("Reconfigure error: %v", err)
	}
	if session.SampleRate() != 16000 {
		t.Errorf("overrides should not stick, got %d", session.SampleRate())
	}
}

func TestSessionManager_ReconfigureInvalid(t *testing.T) {
	m, _ := newTestManager(t, nil)

	session, _ := m.CreateSession(context.Background(), "")
	err := m.Reconfigure(context.Background(), session, recognizer.Options{"-bogus": true})
	if !recognizer.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if session.SampleRate() != 16000 || session.Search() != recognizer.KeyphraseSearch {
		t.Error("session should be untouched")
	}
}

func TestSessionManager_Close(t *testing.T) {
	m, eng := newTestManager(t, nil)

	a, _ := m.CreateSession(context.Background(), "")
	b, _ := m.CreateSession(context.Background(), "")

	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if m.SessionCount() != 0 {
		t.Error("sessions should be cleared")
	}
	if a.State() != recognizer.StateDestroyed || b.State() != recognizer.StateDestroyed {
		t.Error("sessions should be freed")
	}
	if eng.Stats().Closed != 2 {
		t.Errorf("expected two closed decoders, got %+v", eng.Stats())
	}
}
