package types

import "errors"

var (
	// ErrInvalidFormat is returned when a version tag does not follow vYYYY.MM.DD.patch
	ErrInvalidFormat = errors.New("invalid format")

	// ErrNotFound is returned when no qualifying previous dated tag exists
	ErrNotFound = errors.New("not found")

	// ErrRemoteFailure wraps any failure reported by GitHub or Jira
	ErrRemoteFailure = errors.New("remote failure")

	// ErrMissingConfiguration is returned when a required secret or URL is absent
	ErrMissingConfiguration = errors.New("missing configuration")
)
