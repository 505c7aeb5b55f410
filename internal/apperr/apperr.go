// Package apperr defines the error kinds shared by every layer of the service.
//
// Lower layers wrap these sentinels with fmt.Errorf("...: %w") so callers can
// classify a failure with errors.Is without depending on the layer that
// produced it.
package apperr

import "errors"

var (
	// ErrInvalidCredentials indicates a login attempt with an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("credentials incorrect")
	// ErrDuplicateCredential signals that the email is already registered.
	ErrDuplicateCredential = errors.New("credentials taken")
	// ErrDuplicate signals a uniqueness violation other than user credentials.
	ErrDuplicate = errors.New("already exists")
	// ErrNotFound signals a missing entity or user.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a missing, invalid or expired bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates a valid token whose role is not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrStorageUnavailable indicates an object storage call failed.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConfig indicates missing server configuration, such as the signing secret.
	ErrConfig = errors.New("configuration error")
)
