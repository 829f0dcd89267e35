package backend

import (
	"errors"
	"fmt"
)

// ErrUnauthorized matches a FetchError whose response status was 401.
var ErrUnauthorized = errors.New("backend rejected credentials")

// FetchError reports a non-2xx response or a transport failure for one API call.
type FetchError struct {
	Op     string
	Method string
	Path   string
	Status int // 0 when the request never produced a response
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: %s %s: status %d: %s", e.Op, e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.Path, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
