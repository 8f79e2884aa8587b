// Package cli wires configuration, logging and the pipeline into the
// hfquant command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hfquant/internal/config"
	"hfquant/internal/execx"
	"hfquant/internal/hfauth"
	"hfquant/internal/pipeline"
	"hfquant/internal/quant"
)

// Version is stamped at build time with -ldflags "-X hfquant/internal/cli.Version=...".
var Version = "dev"

// Deps are the process-facing seams of the CLI. Zero fields use the real
// implementations.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Runner execx.Runner
	// NewAuth builds the hub client for an endpoint.
	NewAuth func(endpoint string) pipeline.Authenticator
	// LookPath resolves a program name on PATH.
	LookPath func(file string) (string, error)
}

func (d *Deps) fill() {
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Runner == nil {
		d.Runner = execx.NewExecRunner()
	}
	if d.NewAuth == nil {
		d.NewAuth = func(endpoint string) pipeline.Authenticator { return hfauth.NewClient(endpoint) }
	}
	if d.LookPath == nil {
		d.LookPath = exec.LookPath
	}
}

// exitError carries a specific exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the CLI against the real process and returns the exit status.
func Execute(ctx context.Context) int {
	return MainWithArgs(ctx, os.Args[1:], Deps{})
}

// MainWithArgs runs the command tree with args and returns the exit status
// instead of exiting, so tests can drive it.
func MainWithArgs(ctx context.Context, args []string, d Deps) int {
	d.fill()
	root := buildRootCmdWith(&d)
	root.SetArgs(args)
	root.SetIn(d.Stdin)
	root.SetOut(d.Stdout)
	root.SetErr(d.Stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(d.Stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(d.Stderr, "Error: %v\n", err)
	return 1
}

// flagValues mirrors the persistent flags. Only flags the user actually set
// override lower configuration layers.
type flagValues struct {
	configPath  string
	logLevel    string
	onFailure   string
	workDir     string
	llamaDir    string
	listen      string
	report      string
	metricsFile string
	timeout     string
}

func (fv *flagValues) register(fs *pflag.FlagSet) {
	fs.StringVar(&fv.configPath, "config", "", "Path to a .yaml, .json or .toml config file")
	fs.StringVar(&fv.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults HFQUANT_LOG_LEVEL or info)")
	fs.StringVar(&fv.onFailure, "on-failure", "", "After a failed stage: continue|stop (defaults HFQUANT_ON_FAILURE or continue)")
	fs.StringVar(&fv.workDir, "workdir", "", "Directory to clone into and run the toolchain from (defaults HFQUANT_WORKDIR or cwd)")
	fs.StringVar(&fv.llamaDir, "llama-dir", "", "llama.cpp checkout holding convert.py and quantize (defaults HFQUANT_LLAMA_DIR or llama.cpp)")
	fs.StringVar(&fv.listen, "listen", "", "Serve /status and /metrics on this address while running, e.g. :9090")
	fs.StringVar(&fv.report, "report", "", "Write a run report to this path (.json, .yaml or .yml)")
	fs.StringVar(&fv.metricsFile, "metrics-file", "", "Write stage metrics in Prometheus textfile format to this path")
	fs.StringVar(&fv.timeout, "stage-timeout", "", "Per-stage deadline such as 2h; empty waits forever")
}

func (fv *flagValues) overrides(fs *pflag.FlagSet) config.Config {
	var c config.Config
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("log-level", &c.LogLevel, fv.logLevel)
	set("on-failure", &c.OnFailure, fv.onFailure)
	set("workdir", &c.WorkDir, fv.workDir)
	set("llama-dir", &c.LlamaDir, fv.llamaDir)
	set("listen", &c.Listen, fv.listen)
	set("report", &c.Report, fv.report)
	set("metrics-file", &c.MetricsFile, fv.metricsFile)
	set("stage-timeout", &c.StageTimeout, fv.timeout)
	return c
}

// resolve layers defaults, the config file, the environment, flags and
// positional arguments, in that order.
func (fv *flagValues) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Defaults()
	if fv.configPath != "" {
		fc, err := config.Load(fv.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = config.Merge(cfg, fc)
	}
	cfg = config.Merge(cfg, config.FromEnv())
	cfg = config.Merge(cfg, fv.overrides(cmd.Flags()))
	if len(args) > 0 {
		cfg.Repository = args[0]
	}
	if len(args) > 1 {
		cfg.Method = args[1]
	}
	if err := cfg.Finalize(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func buildRootCmdWith(d *Deps) *cobra.Command {
	fv := &flagValues{}
	root := &cobra.Command{
		Use:   "hfquant [repository_url] [quantization_method]",
		Short: "Clone a Hugging Face model, convert it to fp16 and quantize it with llama.cpp",
		Long: "hfquant clones a model repository with git-lfs, converts it to fp16 with\n" +
			"llama.cpp's convert.py and quantizes the result with llama.cpp's quantize.\n" +
			"Missing arguments are prompted for on stdin.",
		Example: "  hfquant https://huggingface.co/TinyLlama/TinyLlama-1.1B-Chat-v1.0 q4_k_m\n" +
			"  HF_TOKEN=hf_xxx hfquant --on-failure stop --report run.json",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return quant.Codes(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fv.resolve(cmd, args)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg, d)
		},
	}
	fv.register(root.PersistentFlags())

	root.AddCommand(newMethodsCmd(), newDoctorCmd(fv, d), newVersionCmd())

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	root.AddCommand(completionCmd)

	return root
}
