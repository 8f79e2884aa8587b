package pipeline

import (
	"errors"
	"fmt"
)

// stageFailedError is returned by Run when PolicyStop ended the run early.
type stageFailedError struct {
	stage Stage
	err   error
}

func (e *stageFailedError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("stage %s failed; remaining stages skipped", e.stage)
	}
	return fmt.Sprintf("stage %s failed; remaining stages skipped: %v", e.stage, e.err)
}

func (e *stageFailedError) Unwrap() error { return e.err }

// IsStageFailed reports whether err means the stop policy halted the run.
func IsStageFailed(err error) bool {
	var e *stageFailedError
	return errors.As(err, &e)
}

// FailedStage returns the stage that halted the run, if any.
func FailedStage(err error) (Stage, bool) {
	var e *stageFailedError
	if errors.As(err, &e) {
		return e.stage, true
	}
	return "", false
}

// promptError wraps a failure to read an interactive answer.
type promptError struct {
	label string
	err   error
}

func (e *promptError) Error() string { return fmt.Sprintf("read %q: %v", e.label, e.err) }

func (e *promptError) Unwrap() error { return e.err }

// IsPromptFailed reports whether err came from reading stdin.
func IsPromptFailed(err error) bool {
	var e *promptError
	return errors.As(err, &e)
}
