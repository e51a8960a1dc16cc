package recognizer

import "github.com/eleven-am/voice-recognizer/internal/engine"

type installFunc func(dec engine.Decoder, name, arg string) error

func (s *Session) AddKeyphraseSearch(name, phrase string) error {
	return s.addSearch("addKeyphraseSearch", "keyphrase", name, phrase, engine.Decoder.SetKeyphrase)
}

func (s *Session) AddKeywordsSearch(name, path string) error {
	return s.addSearch("addKeywordsSearch", "keywords", name, path, engine.Decoder.SetKeywords)
}

func (s *Session) AddGrammarSearch(name, path string) error {
	return s.addSearch("addGrammarSearch", "grammar", name, path, engine.Decoder.SetGrammarFile)
}

func (s *Session) AddNgramSearch(name, path string) error {
	return s.addSearch("addNgramSearch", "ngram", name, path, engine.Decoder.SetLanguageModelFile)
}

func (s *Session) addSearch(op, kind, name, arg string, install installFunc) error {
	if name == "" || arg == "" {
		return s.fail(validationError(op, "expected a search name and a %s", kind))
	}

	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return s.fail(closedError(op))
	}
	err := install(s.dec, name, arg)
	s.mu.Unlock()

	if err != nil {
		return s.fail(operationError(op, "failed to add "+kind+" search to recognizer", err))
	}
	s.log.Debug("search added", "kind", kind, "name", name)
	return nil
}

// Search returns the active search name, or "" once freed.
func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed {
		return ""
	}
	return s.dec.Search()
}

// SetSearch switches the active search. An unknown name leaves the active
// search to the engine and is only logged.
func (s *Session) SetSearch(name string) {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		s.fail(closedError("setSearch"))
		return
	}
	err := s.dec.SetSearch(name)
	s.mu.Unlock()

	if err != nil {
		s.log.Debug("set search failed", "name", name, "error", err)
	}
}
