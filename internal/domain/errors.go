package domain

import "fmt"

// NotAuthenticatedError means no valid credential could be supplied, after
// the documented refresh-then-sign-out chain has already run.
type NotAuthenticatedError struct {
	Reason string
}

func (e NotAuthenticatedError) Error() string {
	if e.Reason == "" {
		return "not authenticated"
	}
	return fmt.Sprintf("not authenticated: %s", e.Reason)
}

// Is enables errors.Is matching on NotAuthenticatedError.
func (e NotAuthenticatedError) Is(target error) bool {
	_, ok := target.(NotAuthenticatedError)
	if ok {
		return true
	}
	_, ok = target.(*NotAuthenticatedError)
	return ok
}

// ErrNotAuthenticated is the sentinel error for missing authentication.
var ErrNotAuthenticated = NotAuthenticatedError{}

// MissingCredentialsError means no credential bundle exists in the store.
type MissingCredentialsError struct{}

func (e MissingCredentialsError) Error() string { return "no stored credentials" }

func (e MissingCredentialsError) Is(target error) bool {
	_, ok := target.(MissingCredentialsError)
	if ok {
		return true
	}
	_, ok = target.(*MissingCredentialsError)
	return ok
}

var ErrMissingCredentials = MissingCredentialsError{}

// NetworkError wraps a transport-level failure. Timeouts surface here; the
// record-write protocol never retries on its own.
type NetworkError struct {
	Cause error
}

func (e NetworkError) Error() string {
	if e.Cause == nil {
		return "network error"
	}
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e NetworkError) Unwrap() error { return e.Cause }

func (e NetworkError) Is(target error) bool {
	_, ok := target.(NetworkError)
	if ok {
		return true
	}
	_, ok = target.(*NetworkError)
	return ok
}

var ErrNetwork = NetworkError{}

// ServerError is a structured rejection from the remote repository.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e ServerError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
}

func (e ServerError) Is(target error) bool {
	_, ok := target.(ServerError)
	if ok {
		return true
	}
	_, ok = target.(*ServerError)
	return ok
}

var ErrServer = ServerError{}

// IntegrityError means a referenced record's content no longer matches the
// hash captured when the reference was created.
type IntegrityError struct {
	URI string
}

func (e IntegrityError) Error() string {
	if e.URI == "" {
		return "integrity violation"
	}
	return fmt.Sprintf("integrity violation for %s", e.URI)
}

func (e IntegrityError) Is(target error) bool {
	_, ok := target.(IntegrityError)
	if ok {
		return true
	}
	_, ok = target.(*IntegrityError)
	return ok
}

var ErrIntegrity = IntegrityError{}

// MissingLocationDataError means the address record a check-in references is
// gone. Distinct from a hash mismatch, which is a normal boolean outcome.
type MissingLocationDataError struct {
	URI string
}

func (e MissingLocationDataError) Error() string {
	if e.URI == "" {
		return "location data missing"
	}
	return fmt.Sprintf("location data missing: %s", e.URI)
}

func (e MissingLocationDataError) Is(target error) bool {
	_, ok := target.(MissingLocationDataError)
	if ok {
		return true
	}
	_, ok = target.(*MissingLocationDataError)
	return ok
}

var ErrMissingLocationData = MissingLocationDataError{}

// InvalidFormatError means a payload or identifier failed local validation.
type InvalidFormatError struct {
	Detail string
}

func (e InvalidFormatError) Error() string {
	if e.Detail == "" {
		return "invalid format"
	}
	return fmt.Sprintf("invalid format: %s", e.Detail)
}

func (e InvalidFormatError) Is(target error) bool {
	_, ok := target.(InvalidFormatError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidFormatError)
	return ok
}

var ErrInvalidFormat = InvalidFormatError{}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}
