package types

import "time"

// Artifact is a file produced by the pipeline inside the model directory.
type Artifact struct {
	// File name relative to the model directory.
	Name string `json:"name" yaml:"name"`
	// Path as seen from the working directory.
	Path string `json:"path" yaml:"path"`
	// Precision or quantization tag parsed from the file name.
	Quant string `json:"quant" yaml:"quant"`
	// Size in bytes.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`
}

// StageReport is the serialized outcome of one pipeline stage.
type StageReport struct {
	// Stage name: auth, acquire, convert or quantize.
	Stage string `json:"stage" yaml:"stage"`
	// ok, failed or skipped.
	Outcome string `json:"outcome" yaml:"outcome"`
	// Human-readable summary.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Error text when the stage failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Exit status of the external program, when one ran.
	ExitCode *int `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	// Start time.
	Started time.Time `json:"started" yaml:"started"`
	// Wall-clock duration in seconds.
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// Report summarizes one pipeline run.
type Report struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Repository string        `json:"repository" yaml:"repository"`
	ModelID    string        `json:"model_id" yaml:"model_id"`
	ModelName  string        `json:"model_name" yaml:"model_name"`
	Method     string        `json:"method,omitempty" yaml:"method,omitempty"`
	FP16Path   string        `json:"fp16_path" yaml:"fp16_path"`
	OutputPath string        `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Policy     string        `json:"policy" yaml:"policy"`
	Stopped    bool          `json:"stopped" yaml:"stopped"`
	Stages     []StageReport `json:"stages" yaml:"stages"`
	Artifacts  []Artifact    `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// Failed reports whether any stage failed.
func (r *Report) Failed() bool {
	for _, s := range r.Stages {
		if s.Outcome == "failed" {
			return true
		}
	}
	return false
}
