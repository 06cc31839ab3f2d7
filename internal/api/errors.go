package api

import (
	"errors"
	"fmt"
)

// Error kinds callers branch on with errors.Is. Unauthorized means the
// token is invalid or expired and the client-side session must be torn
// down; callers should not queue or retry work for that action.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRequestFailed = errors.New("request failed")
	ErrDecode        = errors.New("invalid response from server")
)

// RequestError is a non-2xx response other than 401. Message carries the
// server's error field when the body was parseable JSON, otherwise the
// HTTP status text.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s (status %d)", e.Message, e.Status)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
