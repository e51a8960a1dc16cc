package dto

type TranscriptEntryResponse struct {
	Text  string `json:"text" example:"turn on the lights"`
	Final bool   `json:"final" example:"true"`
	At    string `json:"at" example:"2024-01-15T10:30:05Z"`
}

type TranscriptResponse struct {
	ID         string                    `json:"id" example:"0b6f6c1e-2a9d-4d8e-9a51-3f1a0c1c2d11"`
	Engine     string                    `json:"engine" example:"pocketsphinx"`
	Search     string                    `json:"search,omitempty" example:"commands"`
	SampleRate int                       `json:"sample_rate,omitempty" example:"16000"`
	Status     string                    `json:"status" example:"ended" enums:"active,ended"`
	StartedAt  string                    `json:"started_at" example:"2024-01-15T10:30:00Z"`
	EndedAt    *string                   `json:"ended_at,omitempty" example:"2024-01-15T10:31:00Z"`
	Entries    []TranscriptEntryResponse `json:"entries"`
}

type MetricsResponse struct {
	Date       string `json:"date" example:"2024-01-15"`
	Hour       int    `json:"hour" example:"14"`
	Sessions   int64  `json:"sessions" example:"12"`
	Utterances int64  `json:"utterances" example:"340"`
	Errors     int64  `json:"errors" example:"1"`
}

type MetricsListResponse struct {
	Hours   int               `json:"hours" example:"24"`
	Metrics []MetricsResponse `json:"metrics"`
}
