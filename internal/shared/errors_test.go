package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAPIError_WithDetails(t *testing.T) {
	invalid := map[string]string{"": "empty word"}
	err := NewAPIError("invalid_words", "some words are invalid").WithDetails(invalid)

	d, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", err.Details)
	}
	if d[""] != "empty word" {
		t.Errorf("unexpected details %v", d)
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     *echo.HTTPError
		status  int
		code    string
		message string
	}{
		{"bad request", BadRequest("invalid_rate", "rate must be a positive integer"), http.StatusBadRequest, "invalid_rate", "rate must be a positive integer"},
		{"not found", NotFound("transcript_not_found", "transcript not found"), http.StatusNotFound, "transcript_not_found", "transcript not found"},
		{"too large", TooLarge("file_too_large", "File too large (max 25MB)"), http.StatusRequestEntityTooLarge, "file_too_large", "File too large (max 25MB)"},
		{"internal", InternalError("session_failed", "failed to create recognizer session"), http.StatusInternalServerError, "session_failed", "failed to create recognizer session"},
		{"custom status", NewAPIError("invalid_words", "some words are invalid").ToHTTP(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity, "invalid_words", "some words are invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertHTTPError(t, tt.err, tt.status, tt.code, tt.message)
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "api error passes through",
			err:     BadRequest("missing_file", "File is required"),
			status:  http.StatusBadRequest,
			code:    "missing_file",
			message: "File is required",
		},
		{
			name:    "plain echo error",
			err:     echo.ErrStatusRequestEntityTooLarge,
			status:  http.StatusRequestEntityTooLarge,
			code:    "request_entity_too_large",
			message: "Request Entity Too Large",
		},
		{
			name:    "route not found",
			err:     echo.ErrNotFound,
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "Not Found",
		},
		{
			name:    "wrapped not found",
			err:     fmt.Errorf("transcript %q: %w", "abc", ErrNotFound),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: `transcript "abc": not found`,
		},
		{
			name:    "wrapped invalid",
			err:     fmt.Errorf("invalid lexicon entry %q: %w", " ", ErrInvalid),
			status:  http.StatusBadRequest,
			code:    "invalid_request",
			message: `invalid lexicon entry " ": invalid`,
		},
		{
			name:    "unknown error hides its cause",
			err:     errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			status:  http.StatusInternalServerError,
			code:    "internal_error",
			message: "internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertHTTPError(t, FromError(tt.err), tt.status, tt.code, tt.message)
		})
	}
}

func TestStatusCode(t *testing.T) {
	if got := statusCode(http.StatusMethodNotAllowed); got != "method_not_allowed" {
		t.Errorf("statusCode(405) = %q", got)
	}
	if got := statusCode(799); got != "http_error" {
		t.Errorf("statusCode(799) = %q", got)
	}
}

func assertHTTPError(t *testing.T, err *echo.HTTPError, expectedStatus int, expectedCode, expectedMessage string) {
	t.Helper()
	if err.Code != expectedStatus {
		t.Errorf("expected status %d, got %d", expectedStatus, err.Code)
	}
	apiErr, ok := err.Message.(*APIError)
	if !ok {
		t.Fatalf("expected message to be *APIError, got %T", err.Message)
	}
	if apiErr.Code != expectedCode {
		t.Errorf("expected code '%s', got '%s'", expectedCode, apiErr.Code)
	}
	if apiErr.Message != expectedMessage {
		t.Errorf("expected message '%s', got '%s'", expectedMessage, apiErr.Message)
	}
}
