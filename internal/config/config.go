package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"hfquant/internal/common/fsutil"
)

// Failure policies understood by the pipeline driver.
const (
	OnFailureContinue = "continue"
	OnFailureStop     = "stop"
)

const (
	defaultLlamaDir   = "llama.cpp"
	defaultPython     = "python"
	defaultGit        = "git"
	defaultHFEndpoint = "https://huggingface.co"
	defaultLogLevel   = "info"
)

// Config holds every tunable of a pipeline run.
// Zero values mean "unspecified"; Finalize fills derived defaults.
type Config struct {
	Token         string   `json:"token" yaml:"token" toml:"token"`
	HFEndpoint    string   `json:"hf_endpoint" yaml:"hf_endpoint" toml:"hf_endpoint"`
	Repository    string   `json:"repository" yaml:"repository" toml:"repository"`
	Method        string   `json:"method" yaml:"method" toml:"method"`
	WorkDir       string   `json:"workdir" yaml:"workdir" toml:"workdir"`
	LlamaDir      string   `json:"llama_dir" yaml:"llama_dir" toml:"llama_dir"`
	Python        string   `json:"python" yaml:"python" toml:"python"`
	ConvertScript string   `json:"convert_script" yaml:"convert_script" toml:"convert_script"`
	QuantizeBin   string   `json:"quantize_bin" yaml:"quantize_bin" toml:"quantize_bin"`
	Git           string   `json:"git" yaml:"git" toml:"git"`
	OnFailure     string   `json:"on_failure" yaml:"on_failure" toml:"on_failure"`
	StageTimeout  string   `json:"stage_timeout" yaml:"stage_timeout" toml:"stage_timeout"`
	Listen        string   `json:"listen" yaml:"listen" toml:"listen"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Report        string   `json:"report" yaml:"report" toml:"report"`
	MetricsFile   string   `json:"metrics_file" yaml:"metrics_file" toml:"metrics_file"`
	LogLevel      string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Defaults returns the baseline configuration, matching the layout the
// conversion scripts expect: a llama.cpp checkout next to the clone.
func Defaults() Config {
	return Config{
		HFEndpoint: defaultHFEndpoint,
		LlamaDir:   defaultLlamaDir,
		Python:     defaultPython,
		Git:        defaultGit,
		OnFailure:  OnFailureContinue,
		LogLevel:   defaultLogLevel,
	}
}

// Merge overlays every non-zero field of over onto base.
func Merge(base, over Config) Config {
	out := base
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&out.Token, over.Token)
	pick(&out.HFEndpoint, over.HFEndpoint)
	pick(&out.Repository, over.Repository)
	pick(&out.Method, over.Method)
	pick(&out.WorkDir, over.WorkDir)
	pick(&out.LlamaDir, over.LlamaDir)
	pick(&out.Python, over.Python)
	pick(&out.ConvertScript, over.ConvertScript)
	pick(&out.QuantizeBin, over.QuantizeBin)
	pick(&out.Git, over.Git)
	pick(&out.OnFailure, over.OnFailure)
	pick(&out.StageTimeout, over.StageTimeout)
	pick(&out.Listen, over.Listen)
	pick(&out.Report, over.Report)
	pick(&out.MetricsFile, over.MetricsFile)
	pick(&out.LogLevel, over.LogLevel)
	if len(over.CORSOrigins) > 0 {
		out.CORSOrigins = append([]string(nil), over.CORSOrigins...)
	}
	return out
}

// Finalize expands paths, derives the converter and quantizer locations from
// LlamaDir when they were not set explicitly, and validates the result.
func (c *Config) Finalize() error {
	c.OnFailure = strings.ToLower(strings.TrimSpace(c.OnFailure))
	if c.OnFailure == "" {
		c.OnFailure = OnFailureContinue
	}
	var err error
	if c.LlamaDir, err = fsutil.ExpandHome(c.LlamaDir); err != nil {
		return fmt.Errorf("llama_dir: %w", err)
	}
	if c.WorkDir, err = fsutil.ExpandHome(c.WorkDir); err != nil {
		return fmt.Errorf("workdir: %w", err)
	}
	if c.ConvertScript == "" {
		c.ConvertScript = filepath.Join(c.LlamaDir, "convert.py")
	}
	if c.QuantizeBin == "" {
		c.QuantizeBin = filepath.Join(c.LlamaDir, "quantize")
		if !filepath.IsAbs(c.QuantizeBin) {
			// exec.Command only searches PATH for bare names; keep it explicitly relative.
			c.QuantizeBin = "." + string(filepath.Separator) + c.QuantizeBin
		}
	}
	return c.Validate()
}

// Validate reports configuration values the pipeline cannot act on.
func (c Config) Validate() error {
	switch c.OnFailure {
	case OnFailureContinue, OnFailureStop:
	default:
		return fmt.Errorf("invalid on_failure %q (want %s|%s)", c.OnFailure, OnFailureContinue, OnFailureStop)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Python == "" || c.Git == "" {
		return fmt.Errorf("python and git commands must be set")
	}
	return nil
}

// Timeout parses StageTimeout. Empty means no per-stage deadline.
func (c Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.StageTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.StageTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid stage_timeout %q: %w", c.StageTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("stage_timeout must not be negative: %s", c.StageTimeout)
	}
	return d, nil
}
