package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared between interaction responses and the ops API.
const (
	CodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	CodeChannelNotFound    = "CHANNEL_NOT_FOUND"
	CodeMissingPermissions = "MISSING_PERMISSIONS"
	CodeAlreadyOpen        = "ALREADY_OPEN"
	CodeNotAuthorized      = "NOT_AUTHORIZED"
	CodePlatformFailure    = "PLATFORM_FAILURE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

// DomainError standardizes application errors. Message is safe to show
// to the invoking member; Err carries internal detail for logs only.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewCategoryNotFound signals that the ticket category could not be
// resolved by ID or name. Surfaced as a corrective instruction.
func NewCategoryNotFound(category string) error {
	return NewDomainError(CodeCategoryNotFound,
		"The ticket category is not configured correctly. Ask an administrator to check the bot settings.",
		http.StatusConflict, map[string]any{"category": category})
}

// NewChannelNotFound signals that a configured channel could not be resolved.
func NewChannelNotFound(channel string) error {
	return NewDomainError(CodeChannelNotFound,
		"The configured channel could not be found. Ask an administrator to check the bot settings.",
		http.StatusConflict, map[string]any{"channel": channel})
}

// NewMissingPermissions signals the bot itself lacks a platform capability.
func NewMissingPermissions(err error) error {
	return &DomainError{
		Code:       CodeMissingPermissions,
		Message:    "I don't have permission to do that here. Ask an administrator to review my role.",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewAlreadyOpen is the informational dedup rejection; the existing
// channel ID rides along in Details.
func NewAlreadyOpen(channelID string) error {
	return NewDomainError(CodeAlreadyOpen,
		"You already have an open ticket.",
		http.StatusConflict, map[string]any{"channel_id": channelID})
}

// NewNotAuthorized is the informational staff-gate rejection.
func NewNotAuthorized(message string) error {
	return NewDomainError(CodeNotAuthorized, message, http.StatusForbidden, nil)
}

// NewPlatformFailure wraps an unexpected platform API failure.
func NewPlatformFailure(action string, err error) error {
	return &DomainError{
		Code:       CodePlatformFailure,
		Message:    "Something went wrong talking to Discord. Please try again in a moment.",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"action": action},
		Err:        err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	de := ToDomainError(err)
	return de != nil && de.Code == code
}
