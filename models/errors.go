package models

import (
	"errors"
	"fmt"
)

// Error codes used across the scrape pipeline. Each code maps to one
// failure domain so callers know how far a failure propagates:
// section, entity, or run.
const (
	ErrCodeNavigation    = "NAVIGATION_FAILED"     // fatal to the current entity
	ErrCodeInteraction   = "INTERACTION_FAILED"    // fatal to the current section
	ErrCodeExtraction    = "EXTRACTION_FAILED"     // fatal to the current section
	ErrCodeStorage       = "STORAGE_FAILED"        // fatal to the current section
	ErrCodeConfiguration = "CONFIGURATION_INVALID" // fatal to the run
	ErrCodeTimeout       = "SCRAPE_TIMEOUT"
	ErrCodeBrowserCrash  = "BROWSER_CRASH"

	// Text-understanding service error codes.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// CodeOf returns the error code carried by err, or "" when no ScrapeError
// is found in its chain.
func CodeOf(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Retryable reports whether an extraction-side error is worth repeating.
// Auth and configuration failures never resolve on retry.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeLLMAuthFailure, ErrCodeConfiguration:
		return false
	}
	return true
}
