package pipeline

import (
	"sync"
	"time"

	"hfquant/pkg/types"
)

// Tracker records run progress for concurrent readers (the status server).
type Tracker struct {
	mu       sync.Mutex
	runID    string
	started  time.Time
	repo     string
	model    string
	method   string
	current  Stage
	lastLine string
	stages   []types.StageReport
	done     bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{started: time.Now()} }

func (t *Tracker) begin(runID string) {
	t.mu.Lock()
	t.runID = runID
	t.started = time.Now()
	t.mu.Unlock()
}

func (t *Tracker) setTarget(repo, model string) {
	t.mu.Lock()
	t.repo, t.model = repo, model
	t.mu.Unlock()
}

func (t *Tracker) setMethod(m string) {
	t.mu.Lock()
	t.method = m
	t.mu.Unlock()
}

func (t *Tracker) start(s Stage) {
	t.mu.Lock()
	t.current = s
	t.lastLine = ""
	t.mu.Unlock()
}

func (t *Tracker) line(l string) {
	t.mu.Lock()
	t.lastLine = l
	t.mu.Unlock()
}

func (t *Tracker) finish(r types.StageReport) {
	t.mu.Lock()
	t.current = ""
	t.stages = append(t.stages, r)
	t.mu.Unlock()
}

func (t *Tracker) markDone() {
	t.mu.Lock()
	t.current = ""
	t.done = true
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() types.StatusResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	return types.StatusResponse{
		RunID:          t.runID,
		Repository:     t.repo,
		ModelName:      t.model,
		Method:         t.method,
		Current:        string(t.current),
		LastLine:       t.lastLine,
		Stages:         append([]types.StageReport{}, t.stages...),
		Done:           t.done,
		UptimeSeconds:  int64(now.Sub(t.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
