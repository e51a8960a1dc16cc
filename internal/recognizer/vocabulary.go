package recognizer

import (
	"fmt"
	"sort"
	"strings"
)

type WordLookup struct {
	Found   map[string]string `json:"in"`
	Missing []string          `json:"out"`
}

// LookupWords partitions words by whether the dictionary knows them.
func (s *Session) LookupWords(words []string) WordLookup {
	out := WordLookup{Found: make(map[string]string), Missing: []string{}}

	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		out.Missing = append(out.Missing, words...)
		s.fail(closedError("lookupWords"))
		return out
	}
	for _, w := range words {
		if phones, ok := s.dec.LookupWord(w); ok {
			out.Found[w] = phones
		} else {
			out.Missing = append(out.Missing, w)
		}
	}
	s.mu.Unlock()
	return out
}

// AddWords inserts word pronunciations into the dictionary. The engine
// rebuilds its search structures once, with the last insert. Words the
// dictionary already knows keep their pronunciation and are logged as
// skipped.
//
// When the last insert fails, words inserted before it are in the
// dictionary but not yet in the search; the error names them. They become
// recognizable with the next successful AddWords.
func (s *Session) AddWords(words map[string]string) error {
	for w, p := range words {
		if strings.TrimSpace(w) == "" || strings.TrimSpace(p) == "" {
			return s.fail(validationError("addWords", "expected a word and a pronunciation, got %q: %q", w, p))
		}
	}

	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return s.fail(closedError("addWords"))
	}

	pending := make([]string, 0, len(words))
	var known []string
	for w := range words {
		if _, ok := s.dec.LookupWord(w); ok {
			known = append(known, w)
			continue
		}
		pending = append(pending, w)
	}
	sort.Strings(pending)
	sort.Strings(known)

	var added, failed []string
	var firstErr error
	committed := len(pending) == 0
	for i, w := range pending {
		commit := i == len(pending)-1
		if err := s.dec.AddWord(w, words[w], commit); err != nil {
			failed = append(failed, w)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		added = append(added, w)
		committed = commit
	}
	s.mu.Unlock()

	if len(known) > 0 {
		s.log.Warn("words already in dictionary, keeping their pronunciation", "words", known)
	}
	if len(failed) > 0 {
		msg := fmt.Sprintf("failed to add %d word(s): %s", len(failed), strings.Join(failed, ", "))
		if len(added) > 0 && !committed {
			msg += fmt.Sprintf("; not committed to the search: %s", strings.Join(added, ", "))
		}
		return s.fail(operationError("addWords", msg, firstErr))
	}
	s.log.Debug("words added", "count", len(added), "skipped", len(known))
	return nil
}
