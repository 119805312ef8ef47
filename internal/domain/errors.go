package domain

import "errors"

// Parse failures. None of them are retried; the user re-triggers the parse.
var (
	ErrInvalidInput     = errors.New("invalid list url")
	ErrResolutionFailed = errors.New("short link resolution failed")
	ErrFetchFailed      = errors.New("list page fetch failed")
	ErrNoLocationData   = errors.New("no location data found")
	ErrNoDataArray      = errors.New("no data array found")
	ErrMalformedData    = errors.New("malformed list data")
)

// Import request failures. Item-level problems are reported in ImportOutcome instead.
var (
	ErrUnauthorized       = errors.New("caller is not authenticated")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Caller-facing messages for parse failures.
const (
	MessageParseFailed = "could not parse the list"
	MessageNoLocations = "no locations found; the list may be private or empty"
)

// IsDataError reports whether err means the page was fetched but held no usable list data.
func IsDataError(err error) bool {
	return errors.Is(err, ErrNoLocationData) ||
		errors.Is(err, ErrNoDataArray) ||
		errors.Is(err, ErrMalformedData)
}

// IsFetchError reports whether err happened before any markup was available.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrResolutionFailed) ||
		errors.Is(err, ErrFetchFailed)
}

// ParseErrorKind is a stable label for metrics and logs.
func ParseErrorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrResolutionFailed):
		return "resolution_failed"
	case errors.Is(err, ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, ErrNoLocationData):
		return "no_location_data"
	case errors.Is(err, ErrNoDataArray):
		return "no_data_array"
	case errors.Is(err, ErrMalformedData):
		return "malformed_data"
	default:
		return "error"
	}
}

// CallerMessage maps a parse error to the text shown to the user.
func CallerMessage(err error) string {
	if IsDataError(err) {
		return MessageNoLocations
	}
	return MessageParseFailed
}
