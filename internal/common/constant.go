// Package common contains shared constants and sentinel errors used across
// the support portal client components.
package common

// TokenHeaderName is the response header the backend uses to hand out the
// bearer token on a successful login.
const TokenHeaderName = "Jwt-Token"

// RequestIDHeaderName carries a per-request correlation id on outbound calls.
const RequestIDHeaderName = "X-Request-ID"

// Keys of the persisted client-side state.
const (
	StorageKeyToken = "token"
	StorageKeyUser  = "user"
	StorageKeyUsers = "users"
)

// FallbackMessage is shown when an operation fails without a server message.
const FallbackMessage = "An error occurred. Please try again."
