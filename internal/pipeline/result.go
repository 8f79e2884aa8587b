package pipeline

import (
	"time"

	"hfquant/pkg/types"
)

// Stage names a pipeline step.
type Stage string

const (
	StageAuth     Stage = "auth"
	StageAcquire  Stage = "acquire"
	StageConvert  Stage = "convert"
	StageQuantize Stage = "quantize"
)

// Outcome of a stage.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// StageResult is what one stage reports back to the driver.
type StageResult struct {
	Stage    Stage
	Outcome  Outcome
	Message  string
	Output   string // diagnostic text from the external program
	Err      error
	ExitCode int // -1 when no program ran or it never started
	Started  time.Time
	Duration time.Duration
}

func ok(msg string) StageResult {
	return StageResult{Outcome: OutcomeOK, Message: msg, ExitCode: -1}
}

func failed(msg string, err error) StageResult {
	return StageResult{Outcome: OutcomeFailed, Message: msg, Err: err, ExitCode: -1}
}

func skipped(msg string) StageResult {
	return StageResult{Outcome: OutcomeSkipped, Message: msg, ExitCode: -1}
}

// Failed reports whether the stage ran and failed.
func (r StageResult) Failed() bool { return r.Outcome == OutcomeFailed }

// Report converts the result to its serialized form.
func (r StageResult) Report() types.StageReport {
	sr := types.StageReport{
		Stage:           string(r.Stage),
		Outcome:         string(r.Outcome),
		Message:         r.Message,
		Started:         r.Started,
		DurationSeconds: r.Duration.Seconds(),
	}
	if r.Err != nil {
		sr.Error = r.Err.Error()
	}
	if r.ExitCode >= 0 {
		code := r.ExitCode
		sr.ExitCode = &code
	}
	return sr
}
