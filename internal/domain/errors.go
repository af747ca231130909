package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks a failed collaborator call or tooling invocation.
	ErrTransport = errors.New("transport failure")
	// ErrMissingInput marks an absent plan file or target file.
	ErrMissingInput = errors.New("missing input")
	// ErrValidation marks a post-edit integrity check failure.
	ErrValidation = errors.New("validation failed")
	// ErrParse marks structured content that could not be parsed.
	ErrParse = errors.New("parse failure")
	// ErrMalformedComment marks a raw comment without a body.
	ErrMalformedComment = errors.New("malformed comment: missing body")
	// ErrInvalidPlan marks a fix plan that violates its schema contract.
	ErrInvalidPlan = errors.New("invalid fix plan")
)

// TransportError wraps a collaborator failure with the operation that failed.
// It matches ErrTransport with errors.Is.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NewTransportError returns a TransportError for op, or nil if err is nil.
func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}
