package lexicon

import (
	"context"
	"fmt"
	"sort"

	"github.com/eleven-am/voice-recognizer/internal/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Word{})
}

// Upsert inserts the words, replacing the pronunciation of words that
// already exist. All words are written in one transaction.
func (s *Store) Upsert(ctx context.Context, words map[string]string) error {
	if len(words) == 0 {
		return nil
	}

	keys := make([]string, 0, len(words))
	for w := range words {
		keys = append(keys, w)
	}
	sort.Strings(keys)

	rows := make([]Word, 0, len(keys))
	for _, w := range keys {
		word, pron := Normalize(w, words[w])
		if word == "" || pron == "" {
			return fmt.Errorf("invalid lexicon entry %q: %w", w, shared.ErrInvalid)
		}
		rows = append(rows, Word{Word: word, Pronunciation: pron})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "word"}},
			DoUpdates: clause.AssignmentColumns([]string{"pronunciation", "updated_at"}),
		}).Create(&rows).Error
	})
}

func (s *Store) List(ctx context.Context) ([]*Word, error) {
	var words []*Word
	err := s.db.WithContext(ctx).Order("word ASC").Find(&words).Error
	return words, err
}

// All returns the lexicon as a word to pronunciation map.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	words, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(words))
	for _, w := range words {
		out[w.Word] = w.Pronunciation
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, word string) error {
	result := s.db.WithContext(ctx).Delete(&Word{}, "word = ?", word)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
