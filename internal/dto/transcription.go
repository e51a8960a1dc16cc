package dto

type TranscriptionSegment struct {
	ID    int     `json:"id" example:"0"`
	Start float64 `json:"start" example:"0.0"`
	End   float64 `json:"end" example:"1.82"`
	Text  string  `json:"text" example:"turn on the lights"`
}

type TranscriptionResponse struct {
	Text string `json:"text" example:"turn on the lights"`
}

type VerboseTranscriptionResponse struct {
	Text     string                 `json:"text" example:"turn on the lights"`
	Duration float64                `json:"duration" example:"1.82"`
	Search   string                 `json:"search,omitempty" example:"commands"`
	Segments []TranscriptionSegment `json:"segments"`
}
