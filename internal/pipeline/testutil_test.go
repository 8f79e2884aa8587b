package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"hfquant/internal/execx"
	"hfquant/internal/hfauth"
)

// fakeRunner records every invocation and answers from respond.
type fakeRunner struct {
	calls    []execx.Cmd
	streamed []bool
	lines    []string // emitted to onLine by Stream
	respond  func(c execx.Cmd) (execx.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, c execx.Cmd) (execx.Result, error) {
	f.calls = append(f.calls, c)
	f.streamed = append(f.streamed, false)
	return f.answer(c)
}

func (f *fakeRunner) Stream(ctx context.Context, c execx.Cmd, onLine func(string)) (execx.Result, error) {
	f.calls = append(f.calls, c)
	f.streamed = append(f.streamed, true)
	for _, l := range f.lines {
		onLine(l)
	}
	return f.answer(c)
}

func (f *fakeRunner) answer(c execx.Cmd) (execx.Result, error) {
	if f.respond != nil {
		return f.respond(c)
	}
	return execx.Result{ExitCode: 0}, nil
}

// keys renders calls as "path arg0" for order assertions.
func (f *fakeRunner) keys() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = key(c)
	}
	return out
}

func key(c execx.Cmd) string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + c.Args[0]
}

// exitWith fakes a program that ran and exited non-zero.
func exitWith(c execx.Cmd, code int, stderr string) (execx.Result, error) {
	return execx.Result{ExitCode: code, Stderr: stderr}, &execx.ExitError{Cmd: c.String(), Code: code, Stderr: stderr}
}

// failOn makes the command with the given key exit with code 1.
func failOn(k, stderr string) func(execx.Cmd) (execx.Result, error) {
	return func(c execx.Cmd) (execx.Result, error) {
		if key(c) == k {
			return exitWith(c, 1, stderr)
		}
		return execx.Result{Stdout: "ok\n"}, nil
	}
}

type fakeAuth struct {
	session *hfauth.Session
	err     error
	tokens  []string
}

func (a *fakeAuth) Login(ctx context.Context, token string) (*hfauth.Session, error) {
	a.tokens = append(a.tokens, token)
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

type fakePrompter struct {
	answers []string
	err     error
	labels  []string
}

func (p *fakePrompter) Prompt(label string) (string, error) {
	p.labels = append(p.labels, label)
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

type harness struct {
	runner   *fakeRunner
	auth     *fakeAuth
	prompter *fakePrompter
	out      *bytes.Buffer
	driver   *Driver
}

func newHarness(t *testing.T, mutate func(o *Options)) *harness {
	t.Helper()
	h := &harness{
		runner:   &fakeRunner{},
		auth:     &fakeAuth{session: &hfauth.Session{Endpoint: "https://huggingface.co", Token: "hf_x", Identity: hfauth.Identity{Name: "alice"}}},
		prompter: &fakePrompter{},
		out:      &bytes.Buffer{},
	}
	opts := Options{
		Repository: "https://huggingface.co/org/Foo-7B",
		Method:     "q4_k_m",
		WorkDir:    t.TempDir(),
		Toolchain: Toolchain{
			Git:           "git",
			Python:        "python",
			ConvertScript: "llama.cpp/convert.py",
			QuantizeBin:   "./llama.cpp/quantize",
		},
		Runner:   h.runner,
		Auth:     h.auth,
		Prompter: h.prompter,
		Stdout:   h.out,
		Stderr:   h.out,
		Logger:   zerolog.Nop(),
		RunID:    "run-1",
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.driver = New(opts)
	return h
}

func outcomes(stages []string, got map[string]string) string {
	var b strings.Builder
	for _, s := range stages {
		b.WriteString(s + "=" + got[s] + " ")
	}
	return strings.TrimSpace(b.String())
}
