package recognizer

import (
	"log/slog"

	"github.com/eleven-am/voice-recognizer/internal/engine"
)

// KeyphraseSearch is the search name a Profile keyphrase is installed under.
const KeyphraseSearch = "keyphrase"

// Profile is the setup every new session receives before audio flows.
type Profile struct {
	ModelDir         string
	Options          Options
	GrammarName      string
	GrammarFile      string
	Keyphrase        string
	SilenceDetection bool
}

// Open creates a session and prepares it with the profile. words are added
// to the dictionary before any search is installed, so grammars may refer
// to them. The session is freed if any step fails.
func (p Profile) Open(eng engine.Engine, words map[string]string, log *slog.Logger) (*Session, error) {
	s, err := New(eng, Config{ModelDir: p.ModelDir, Options: p.Options}, log)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(s, words); err != nil {
		s.Free()
		return nil, err
	}
	return s, nil
}

// Apply adds words, installs and selects the profile's search and sets
// silence detection on an existing session. A decoder reinit drops all of
// these, so Apply also restores a session after Reconfig.
func (p Profile) Apply(s *Session, words map[string]string) error {
	if len(words) > 0 {
		if err := s.AddWords(words); err != nil {
			return err
		}
	}

	var active string
	if p.Keyphrase != "" {
		if err := s.AddKeyphraseSearch(KeyphraseSearch, p.Keyphrase); err != nil {
			return err
		}
		active = KeyphraseSearch
	}
	if p.GrammarName != "" && p.GrammarFile != "" {
		if err := s.AddGrammarSearch(p.GrammarName, p.GrammarFile); err != nil {
			return err
		}
		active = p.GrammarName
	}
	if active != "" {
		s.SetSearch(active)
	}

	s.SetSilenceDetection(p.SilenceDetection)
	return nil
}
