package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// AnswerResult is the verdict for a submitted expression.
type AnswerResult struct {
	IsCorrect bool    `json:"is_correct"`
	Result    float64 `json:"result"`
}

// Entry is one leaderboard row.
type Entry struct {
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string `json:"status"`
}

// APIError carries the server's fail/error envelope.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// ErrEmptyCredentials is returned when username or password is empty.
var ErrEmptyCredentials = errors.New("username and password are required")

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{StatusCode: resp.StatusCode, Status: envelope.Status, Message: envelope.Message}
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
