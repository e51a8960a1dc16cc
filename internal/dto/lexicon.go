package dto

type LexiconResponse struct {
	Words map[string]string `json:"words"`
}

// UpdateLexiconRequest maps words to their phonetic pronunciation.
type UpdateLexiconRequest map[string]string
