package llm

import (
	"context"
	"errors"
	"fmt"
)

// CallKind classifies the outcome of a failed upstream call so each
// pipeline stage can apply its own degrade policy.
type CallKind string

const (
	// KindTimeout marks calls that exceeded their deadline.
	KindTimeout CallKind = "timeout"
	// KindMalformed marks calls that returned an unusable response.
	KindMalformed CallKind = "malformed"
	// KindFailure marks every other upstream failure.
	KindFailure CallKind = "failure"
)

// CallError wraps a failed upstream model call with its operation name
// and classification.
type CallError struct {
	Op   string
	Kind CallKind
	Err  error
}

func (e *CallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// classify wraps an upstream transport error with its kind.
func classify(op string, err error) *CallError {
	kind := KindFailure
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &CallError{Op: op, Kind: kind, Err: err}
}

// malformed builds a CallError for an unusable upstream response.
func malformed(op, msg string) *CallError {
	return &CallError{Op: op, Kind: KindMalformed, Err: errors.New(msg)}
}

// IsTimeout reports whether err is an upstream call timeout.
func IsTimeout(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Kind == KindTimeout
}

// IsMalformed reports whether err is a malformed upstream response.
func IsMalformed(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Kind == KindMalformed
}
