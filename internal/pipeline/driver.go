package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hfquant/internal/artifacts"
	"hfquant/internal/execx"
	"hfquant/internal/hfauth"
	"hfquant/internal/metrics"
	"hfquant/internal/modelref"
	"hfquant/internal/quant"
	"hfquant/pkg/types"
)

// Prompt texts shown when arguments are missing.
const (
	PromptRepository = "Enter the Git repository URL: "
	PromptMethod     = "Enter your chosen quantization method: "
	methodHeader     = "Please choose a quantization method from the following options:"
)

// Authenticator establishes a hub session from a token.
type Authenticator interface {
	Login(ctx context.Context, token string) (*hfauth.Session, error)
}

var _ Authenticator = (*hfauth.Client)(nil)

// Options configures a Driver. Everything process-wide (token, arguments,
// stdio) is passed in here; the driver reads nothing from the environment.
type Options struct {
	Token      string
	Repository string // prompted for when empty
	Method     string // prompted for when empty
	WorkDir    string
	Toolchain  Toolchain
	Policy     Policy
	// StageTimeout bounds each external stage; zero means wait forever.
	StageTimeout time.Duration

	Runner   execx.Runner
	Auth     Authenticator
	Prompter Prompter
	Stdout   io.Writer // user-facing messages
	Stderr   io.Writer // quantizer diagnostics
	Logger   zerolog.Logger
	Metrics  *metrics.Recorder
	Tracker  *Tracker
	RunID    string
}

// Driver sequences the stages of one run.
type Driver struct {
	opts    Options
	log     zerolog.Logger
	session *hfauth.Session
}

// New fills unset options with process defaults.
func New(opts Options) *Driver {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Runner == nil {
		opts.Runner = execx.NewExecRunner()
	}
	if opts.Auth == nil {
		opts.Auth = hfauth.NewClient("")
	}
	if opts.Prompter == nil {
		opts.Prompter = NewLinePrompter(os.Stdin, opts.Stdout)
	}
	if opts.Tracker == nil {
		opts.Tracker = NewTracker()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Toolchain.Git == "" {
		opts.Toolchain.Git = "git"
	}
	if opts.Toolchain.Python == "" {
		opts.Toolchain.Python = "python"
	}
	return &Driver{
		opts: opts,
		log:  opts.Logger.With().Str("run_id", opts.RunID).Logger(),
	}
}

// Tracker returns the tracker fed by this driver.
func (d *Driver) Tracker() *Tracker { return d.opts.Tracker }

// Run executes auth, acquire, convert and quantize in order. Stage failures
// end up in the report; the returned error is non-nil only for a canceled
// context, an unusable repository reference, a failed prompt, or a run
// halted by PolicyStop (see IsStageFailed).
func (d *Driver) Run(ctx context.Context) (*types.Report, error) {
	d.opts.Tracker.begin(d.opts.RunID)
	defer d.opts.Tracker.markDone()

	rep := &types.Report{RunID: d.opts.RunID, Policy: d.opts.Policy.String()}
	record := func(r StageResult) { rep.Stages = append(rep.Stages, r.Report()) }

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	record(d.runStage(ctx, StageAuth, 0, d.authenticate))
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	repo := d.opts.Repository
	if repo == "" {
		var err error
		if repo, err = d.prompt(PromptRepository); err != nil {
			return rep, err
		}
	}
	ref, err := modelref.Parse(repo)
	if err != nil {
		return rep, err
	}
	rep.Repository, rep.ModelID, rep.ModelName, rep.FP16Path = ref.URL, ref.ID, ref.Name, ref.FP16Path
	d.opts.Tracker.setTarget(ref.URL, ref.Name)
	d.log.Info().Str("model_id", ref.ID).Str("fp16", ref.FP16Path).Msg("resolved repository")

	var halt *stageFailedError
	gate := func(stage Stage, fn func(context.Context) StageResult) error {
		if halt != nil {
			r := skipped(fmt.Sprintf("skipped after %s failed", halt.stage))
			r.Stage, r.Started = stage, time.Now()
			d.finish(r)
			record(r)
			return nil
		}
		r := d.runStage(ctx, stage, d.opts.StageTimeout, fn)
		record(r)
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Failed() && d.opts.Policy == PolicyStop {
			halt = &stageFailedError{stage: stage, err: r.Err}
		}
		return nil
	}

	if err := gate(StageAcquire, func(ctx context.Context) StageResult { return d.acquire(ctx, ref.URL) }); err != nil {
		return rep, err
	}
	if err := gate(StageConvert, func(ctx context.Context) StageResult { return d.convert(ctx, ref.Name, ref.FP16Path) }); err != nil {
		return rep, err
	}

	method := d.opts.Method
	if method == "" && halt == nil {
		d.say(methodHeader)
		if err := quant.WriteList(d.opts.Stdout); err != nil {
			return rep, err
		}
		if method, err = d.prompt(PromptMethod); err != nil {
			return rep, err
		}
	}
	rep.Method = method
	if halt == nil {
		rep.OutputPath = ref.OutputPath(method)
		if m, ok := quant.Lookup(method); ok {
			d.log.Info().Str("method", m.Code).Str("description", m.Description).Msg("quantization method")
		} else {
			d.log.Warn().Str("method", method).Msg("method not in catalog; passing it to quantize as given")
		}
	}
	d.opts.Tracker.setMethod(method)
	if err := gate(StageQuantize, func(ctx context.Context) StageResult {
		return d.quantize(ctx, ref.FP16Path, rep.OutputPath, method)
	}); err != nil {
		return rep, err
	}

	arts, err := artifacts.Scan(filepath.Join(d.opts.WorkDir, ref.Name))
	if err != nil {
		d.log.Warn().Err(err).Msg("scan artifacts")
	}
	rep.Artifacts = arts

	if halt != nil {
		rep.Stopped = true
		return rep, halt
	}
	return rep, nil
}

// runStage times fn, feeds metrics and the tracker, and logs the outcome.
func (d *Driver) runStage(ctx context.Context, stage Stage, timeout time.Duration, fn func(context.Context) StageResult) StageResult {
	sctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	d.opts.Tracker.start(stage)
	if d.opts.Metrics != nil {
		d.opts.Metrics.StageStarted(string(stage))
	}
	d.log.Debug().Str("stage", string(stage)).Msg("stage started")

	started := time.Now()
	r := fn(sctx)
	r.Stage, r.Started, r.Duration = stage, started, time.Since(started)
	d.finish(r)
	return r
}

func (d *Driver) finish(r StageResult) {
	d.opts.Tracker.finish(r.Report())
	if d.opts.Metrics != nil {
		d.opts.Metrics.StageFinished(string(r.Stage), string(r.Outcome), r.Duration)
	}
	ev := d.log.Info()
	if r.Failed() {
		ev = d.log.Warn().Err(r.Err)
	}
	ev.Str("stage", string(r.Stage)).
		Str("outcome", string(r.Outcome)).
		Dur("duration", r.Duration).
		Msg(r.Message)
}

func (d *Driver) prompt(label string) (string, error) {
	v, err := d.opts.Prompter.Prompt(label)
	if err != nil {
		return "", &promptError{label: label, err: err}
	}
	return v, nil
}

func (d *Driver) say(format string, a ...any) {
	fmt.Fprintf(d.opts.Stdout, format+"\n", a...)
}
