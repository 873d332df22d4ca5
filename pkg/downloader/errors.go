package downloader

import "fmt"

// TransportError is returned when a request could not be
// completed, or the body could not be read.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("downloading %s: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the server responds with a
// non-2xx status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downloading %s: unexpected response code: %d", e.URL, e.StatusCode)
}
