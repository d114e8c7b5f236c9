package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session and authentication errors
	ErrValidation       = fmt.Errorf("validation failed")
	ErrAuthentication   = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrBusy             = fmt.Errorf("another operation is in progress")

	// API and upload errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrUpload     = fmt.Errorf("upload failed")

	// Storage errors
	ErrKeyNotFound   = fmt.Errorf("key not found")
	ErrStorageDecode = fmt.Errorf("stored snapshot could not be decoded")
	ErrUploadMissing = fmt.Errorf("upload not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ValidationError reports a missing required local input (username, password, file).
//
// No network request is made when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AuthenticationError reports a rejected credential exchange.
//
// Message holds the server-provided error or a generic fallback.
type AuthenticationError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string { return e.Message }

func (e *AuthenticationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAuthentication, e.Err}
	}
	return []error{ErrAuthentication}
}

// UploadError reports a rejected file submission or a malformed response body.
type UploadError struct {
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpload, e.Err}
	}
	return []error{ErrUpload}
}

// StorageDecodeError reports a corrupt persisted snapshot. It is logged and absorbed, never surfaced to callers.
type StorageDecodeError struct {
	Key string
	Err error
}

func (e *StorageDecodeError) Error() string {
	return fmt.Sprintf("%v: key %q: %v", ErrStorageDecode, e.Key, e.Err)
}

func (e *StorageDecodeError) Unwrap() []error { return []error{ErrStorageDecode, e.Err} }

// UserMessage returns the text shown to users for err.
//
// Typed errors render their own message; anything else falls back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	var aErr *AuthenticationError
	var uErr *UploadError
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.As(err, &aErr):
		return aErr.Message
	case errors.As(err, &uErr):
		return uErr.Message
	case errors.Is(err, ErrBusy):
		return "Please wait for the current operation to finish"
	default:
		return err.Error()
	}
}
