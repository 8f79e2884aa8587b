// Package pipeline drives the download, convert and quantize run. It is
// structured into small files by concern:
//
//   - driver.go: Options, Driver and the fixed stage sequence in Run.
//   - stages.go: the four stages (auth, acquire, convert, quantize), each a
//     thin wrapper over an external program or the identity endpoint.
//   - result.go: StageResult and outcomes.
//   - policy.go: the continuation policy applied after a failed stage.
//   - prompt.go: interactive fallback for missing arguments.
//   - status.go: Tracker, the concurrent-safe view served by /status.
//   - errors.go: error types and helpers (IsStageFailed, IsPromptFailed).
//
// Stages never return Go errors for failures of the programs they run; they
// return a StageResult and the driver decides whether to go on.
package pipeline
