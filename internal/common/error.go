package common

import "errors"

var (
	// Session errors.
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrSessionExpired        = errors.New("session expired")

	// ErrValidationGap marks a cached blob that could not be decoded.
	// It is never surfaced to the operator; the value reads as absent.
	ErrValidationGap = errors.New("cached value could not be decoded")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUploadRejected is returned when the server answered a profile image
	// upload with a success status other than 200.
	ErrUploadRejected = errors.New("upload was not accepted")
)
