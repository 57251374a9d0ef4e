// Package pipeerr holds the error kinds a pipeline run can end with.
// Callers match them with errors.Is and errors.As.
package pipeerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoInput        = errors.New("image and audio are both required")
	ErrNoFaceDetected = errors.New("no face detected")
	ErrTransport      = errors.New("transport failure")
)

type Stage string

const (
	StageImage     Stage = "image"
	StageAudio     Stage = "audio"
	StageDiagnosis Stage = "diagnosis"
)

// TransportError is any network, status or decoding failure talking to a
// remote service. It matches ErrTransport.
type TransportError struct {
	Stage Stage
	Err   error
}

func Transport(stage Stage, err error) error {
	return &TransportError{Stage: stage, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// JobFailedError is a transcription job that reached the remote error status.
type JobFailedError struct {
	Detail string
}

func (e *JobFailedError) Error() string {
	return "transcription failed: " + e.Detail
}

// MissingConfigError lists required secrets that were not provided.
type MissingConfigError struct {
	Names []string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Names, ", ")
}

// Kind is a stable short name for err, used in API responses and metrics.
func Kind(err error) string {
	var (
		job     *JobFailedError
		missing *MissingConfigError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoInput):
		return "no_input"
	case errors.Is(err, ErrNoFaceDetected):
		return "no_face_detected"
	case errors.As(err, &job):
		return "transcription_failed"
	case errors.As(err, &missing):
		return "missing_configuration"
	case errors.Is(err, ErrTransport):
		return "transport_failure"
	default:
		return "internal"
	}
}
