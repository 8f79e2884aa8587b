package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}

// StatusResponse is returned by GET /status while a run is in progress.
type StatusResponse struct {
	// Run identifier, also present in every log line.
	RunID string `json:"run_id"`
	// Repository reference once resolved.
	Repository string `json:"repository,omitempty"`
	// Model name derived from the repository reference.
	ModelName string `json:"model_name,omitempty"`
	// Quantization method once chosen.
	Method string `json:"method,omitempty"`
	// Stage currently executing, empty when idle or done.
	Current string `json:"current,omitempty"`
	// Most recent line emitted by the running external program.
	LastLine string `json:"last_line,omitempty"`
	// Finished stages in execution order.
	Stages []StageReport `json:"stages"`
	// True once the driver has returned.
	Done bool `json:"done"`
	// Seconds since the run started.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}
