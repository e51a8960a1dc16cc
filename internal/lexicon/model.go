package lexicon

import (
	"strings"
	"time"
)

// Word is a custom dictionary entry. Pronunciation is a space separated
// phone sequence in the engine's phone set, e.g. "HH AH L OW".
type Word struct {
	Word          string    `gorm:"primaryKey" json:"word"`
	Pronunciation string    `gorm:"not null" json:"pronunciation"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Word) TableName() string {
	return "lexicon_words"
}

// Normalize trims the word and collapses the phones of a pronunciation to
// single spaces.
func Normalize(word, pronunciation string) (string, string) {
	return strings.TrimSpace(word), strings.Join(strings.Fields(pronunciation), " ")
}
