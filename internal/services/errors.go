package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound means the sender has no durable record; the handler
	// should prompt re-onboarding.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuotaExceeded aborts a quota-funded invocation before any remote
	// call is made.
	ErrQuotaExceeded = errors.New("free usage quota exceeded")
	// ErrMissingTypefullyKey is a configuration fault: onboarding should have
	// guaranteed the key before a voice note ever reached the pipeline.
	ErrMissingTypefullyKey = errors.New("user has no typefully api key")
)

type PipelineStage string

const (
	StageStaging        PipelineStage = "staging"
	StageTranscription  PipelineStage = "transcription"
	StageTransformation PipelineStage = "transformation"
	StagePublish        PipelineStage = "publish"
)

// PipelineError marks which stage of the voice pipeline failed so the
// delivery layer can pick the matching user-visible message.
type PipelineError struct {
	Stage PipelineStage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func stageError(stage PipelineStage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
