package ingest

import (
	"errors"
	"fmt"
)

// OpenError indicates an input document could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// DecodeError indicates an input document is not a valid auction JSON
// document.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FetchError indicates a remote input document could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var open *OpenError
	if errors.As(err, &open) {
		return "open"
	}
	var decode *DecodeError
	if errors.As(err, &decode) {
		return "decode"
	}
	var fetch *FetchError
	if errors.As(err, &fetch) {
		return "fetch"
	}
	return "other"
}
