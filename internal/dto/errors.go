package dto

type ValidationError struct {
	Field   string `json:"field" example:"lights"`
	Message string `json:"message" example:"pronunciation is required"`
}
