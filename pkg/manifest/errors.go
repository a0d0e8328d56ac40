package manifest

import (
	"errors"
	"fmt"
)

// Sentinel errors used for simple equality-style checks.
var (
	// ErrFetch indicates the manifest could not be retrieved: a transport
	// failure or a non-2xx response.
	ErrFetch = errors.New("manifest: fetch failed")

	// ErrParse indicates the manifest body was not valid JSON.
	ErrParse = errors.New("manifest: parse failed")
)

// FetchError carries the URL and, when a response arrived, its status code.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError represents a manifest body that could not be decoded.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.URL, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// IsFetchFailure reports whether err is (or wraps) a fetch failure.
func IsFetchFailure(err error) bool { return errors.Is(err, ErrFetch) }

// IsParseFailure reports whether err is (or wraps) a parse failure.
func IsParseFailure(err error) bool { return errors.Is(err, ErrParse) }
