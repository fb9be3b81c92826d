package model

import "errors"

// Domain outcomes the store and gateway report. Handlers map these to HTTP
// status codes; raw store errors never cross the repository boundary.
var (
	// ErrInvalidRequest covers malformed input: empty required fields or an
	// empty patch.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidURL means the url is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrDuplicateURL means the owner already holds a record with this URL,
	// whether caught by the pre-check or by the store's unique constraint.
	ErrDuplicateURL = errors.New("url already bookmarked")

	// ErrNotFound is reported for targets that do not exist or belong to a
	// different owner. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("bookmark not found")

	// ErrUnavailable is a transient store or network failure. The whole
	// operation is safe to retry.
	ErrUnavailable = errors.New("store unavailable")
)
