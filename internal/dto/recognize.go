package dto

type SessionResponse struct {
	SessionID        string `json:"session_id" example:"0b6f6c1e-2a9d-4d8e-9a51-3f1a0c1c2d11"`
	State            string `json:"state" example:"processing" enums:"created,ready,processing,destroyed"`
	Search           string `json:"search" example:"keyphrase"`
	SilenceDetection bool   `json:"silence_detection" example:"true"`
	Remote           string `json:"remote" example:"203.0.113.7"`
	StartedAt        string `json:"started_at" example:"2024-01-15T10:30:00Z"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count" example:"1"`
}
