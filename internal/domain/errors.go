package domain

import "errors"

// Session lifecycle error types

var (
	// ErrNotAuthenticated indicates no Spotify credential is on record for the user
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRefreshFailed indicates the token refresh call was rejected or errored
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrLimitOutOfRange indicates a result limit outside the allowed range
	ErrLimitOutOfRange = errors.New("result limit out of range")

	// ErrUpstreamUnavailable indicates a Spotify data or mail delivery failure
	// after a successful lifecycle check
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
