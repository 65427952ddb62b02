package clients

import (
	"errors"
	"fmt"
	"net/http"
)

var errEmptyBody = errors.New("empty response body")

// Envelope is the uniform response wrapper of the API.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Payload T      `json:"payload"`
	Status  string `json:"status"`
	// Total comes from the x-total-count header; nil when absent.
	Total *int64 `json:"-"`
}

// OK reports an application-level success.
func (e *Envelope[T]) OK() bool {
	return e != nil && e.Code == http.StatusOK
}

// Err converts a failed envelope into an *APIError, nil when OK.
func (e *Envelope[T]) Err() error {
	if e.OK() {
		return nil
	}
	if e == nil {
		return &APIError{Message: "no response"}
	}
	return &APIError{Code: e.Code, Message: e.Error, Status: e.Status}
}

// APIError is an envelope whose code is not 200.
type APIError struct {
	Code    int
	Message string
	Status  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: code %d", e.Code)
	}
	return fmt.Sprintf("api error: code %d: %s", e.Code, e.Message)
}

// HTTPError is a non-2xx response that carried no envelope.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}
