package rag

import (
	"errors"
	"fmt"
)

// NotReadyError reports that a required corpus or index artifact is not
// available. It is fatal for the request and not retried automatically;
// Artifact names what the operator needs to rebuild.
type NotReadyError struct {
	Artifact string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("not ready: %s is not available; build or load the artifacts first", e.Artifact)
}

// IsNotReady reports whether err is a NotReadyError.
func IsNotReady(err error) bool {
	var notReady *NotReadyError
	return errors.As(err, &notReady)
}
