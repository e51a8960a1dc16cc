package recognizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eleven-am/voice-recognizer/internal/engine/memory"
)

func openProfile(t *testing.T, p Profile, words map[string]string) (*Session, *memory.Engine, error) {
	t.Helper()
	eng := memory.New(memory.Options{})
	if p.ModelDir == "" {
		p.ModelDir = t.TempDir()
	}
	s, err := p.Open(eng, words, nil)
	if s != nil {
		t.Cleanup(s.Free)
	}
	return s, eng, err
}

func TestProfile_Keyphrase(t *testing.T) {
	s, eng, err := openProfile(t, Profile{Keyphrase: "hello computer", SilenceDetection: true}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Search() != KeyphraseSearch {
		t.Errorf("expected keyphrase search to be active, got %q", s.Search())
	}
	if !s.SilenceDetection() {
		t.Error("silence detection should be enabled")
	}
	if got := eng.Last().Searches()[KeyphraseSearch].Arg; got != "hello computer" {
		t.Errorf("unexpected keyphrase %q", got)
	}
	if s.State() != StateReady {
		t.Errorf("profile should not start processing, state %s", s.State())
	}
}

func TestProfile_GrammarWins(t *testing.T) {
	gram := filepath.Join(t.TempDir(), "commands.gram")
	if err := os.WriteFile(gram, []byte("#JSGF V1.0;\ngrammar commands;\npublic <cmd> = lights on | lights off;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, _, err := openProfile(t, Profile{Keyphrase: "hello", GrammarName: "commands", GrammarFile: gram}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Search() != "commands" {
		t.Errorf("expected grammar search to be active, got %q", s.Search())
	}
	if s.SilenceDetection() {
		t.Error("silence detection should follow the profile")
	}
}

func TestProfile_WordsBeforeSearch(t *testing.T) {
	words := map[string]string{"hello": "HH AH L OW", "computer": "K AH M P Y UW T ER"}
	s, eng, err := openProfile(t, Profile{Keyphrase: "hello computer"}, words)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := s.LookupWords([]string{"hello", "computer"}); len(got.Missing) != 0 {
		t.Errorf("words were not added: %+v", got)
	}
	if eng.Last().Commits() != 1 {
		t.Errorf("expected one commit, got %d", eng.Last().Commits())
	}
}

func TestProfile_FailureFrees(t *testing.T) {
	s, eng, err := openProfile(t, Profile{GrammarName: "commands", GrammarFile: "/does/not/exist.gram"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if s != nil {
		t.Error("no session should be returned")
	}
	if st := eng.Stats(); st.Opened != 1 || st.Closed != 1 {
		t.Errorf("session should be freed, stats %+v", st)
	}
}

func TestProfile_Default(t *testing.T) {
	s, _, err := openProfile(t, Profile{}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Search() != memory.DefaultSearch {
		t.Errorf("expected engine default search, got %q", s.Search())
	}
}

func TestProfile_ApplyAfterReconfig(t *testing.T) {
	p := Profile{Keyphrase: "hello"}
	s, _, err := openProfile(t, p, map[string]string{"hello": "HH AH L OW"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := s.Reconfig(Options{"-samprate": 16000}, nil); err != nil {
		t.Fatalf("reconfig: %v", err)
	}
	if s.Search() != memory.DefaultSearch {
		t.Fatalf("reinit should reset searches, got %q", s.Search())
	}

	if err := p.Apply(s, map[string]string{"hello": "HH AH L OW"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Search() != KeyphraseSearch {
		t.Errorf("expected keyphrase search restored, got %q", s.Search())
	}
	if got := s.LookupWords([]string{"hello"}); len(got.Missing) != 0 {
		t.Errorf("custom word not restored: %+v", got)
	}
}
