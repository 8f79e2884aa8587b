package pipeline

import (
	"context"
	"strings"

	"hfquant/internal/execx"
)

// Toolchain locates the external programs.
type Toolchain struct {
	Git           string
	Python        string
	ConvertScript string
	QuantizeBin   string
}

// authenticate exchanges the configured token. Every outcome is non-fatal.
func (d *Driver) authenticate(ctx context.Context) StageResult {
	if strings.TrimSpace(d.opts.Token) == "" {
		d.say("Hugging Face token not found in environment variables.")
		return skipped("token not set")
	}
	s, err := d.opts.Auth.Login(ctx, d.opts.Token)
	if err != nil {
		d.say("Failed to log in to Hugging Face: %v", err)
		return failed("login failed", err)
	}
	d.session = s
	d.say("Logged in to Hugging Face successfully.")
	return ok("logged in as " + s.Identity.Name)
}

// acquire initializes git-lfs and clones url, echoing clone progress (which
// git writes to stderr) line by line.
func (d *Driver) acquire(ctx context.Context, url string) StageResult {
	env := d.session.GitEnv()
	lfs := execx.Cmd{Path: d.opts.Toolchain.Git, Args: []string{"lfs", "install"}, Env: env, Dir: d.opts.WorkDir}
	res, err := d.opts.Runner.Run(ctx, lfs)
	if err != nil {
		r := failed("error during Git LFS initialization", err)
		r.ExitCode, r.Output = res.ExitCode, res.Stderr
		if execx.ExitCode(err) >= 0 {
			d.say("Error during Git LFS initialization:")
			d.say("%s", res.Stderr)
		} else {
			d.say("An error occurred: %v", err)
		}
		return r
	}
	d.say("Git LFS initialized.\n%s", res.Stdout)

	clone := execx.Cmd{Path: d.opts.Toolchain.Git, Args: []string{"clone", url}, Env: env, Dir: d.opts.WorkDir}
	res, err = d.opts.Runner.Stream(ctx, clone, func(line string) {
		d.say("%s", line)
		d.opts.Tracker.line(line)
	})
	if err != nil {
		r := failed("error occurred while cloning the repository", err)
		r.ExitCode, r.Output = res.ExitCode, res.Stderr
		if execx.ExitCode(err) >= 0 {
			d.say("Error occurred while cloning the repository.")
		} else {
			d.say("An error occurred: %v", err)
		}
		return r
	}
	d.say("Repository cloned successfully.")
	r := ok("repository cloned")
	r.ExitCode = res.ExitCode
	return r
}

// convert runs the fp16 conversion script against the cloned directory.
func (d *Driver) convert(ctx context.Context, modelName, fp16Path string) StageResult {
	tc := d.opts.Toolchain
	cmd := execx.Cmd{
		Path: tc.Python,
		Args: []string{tc.ConvertScript, modelName, "--outtype", "f16", "--outfile", fp16Path},
		Dir:  d.opts.WorkDir,
	}
	res, err := d.opts.Runner.Run(ctx, cmd)
	if err != nil {
		d.say("An error occurred during model conversion:")
		diag := res.Stderr
		if diag == "" {
			diag = err.Error()
		}
		d.say("%s", diag)
		r := failed("model conversion failed", err)
		r.ExitCode, r.Output = res.ExitCode, diag
		return r
	}
	d.say("Model conversion to fp16 successful. Output:")
	d.say("%s", res.Stdout)
	r := ok("converted to " + fp16Path)
	r.ExitCode, r.Output = res.ExitCode, res.Stdout
	return r
}

// quantize runs the quantizer with an argument vector; no shell is involved,
// so paths and method codes are passed through verbatim.
func (d *Driver) quantize(ctx context.Context, fp16Path, outPath, method string) StageResult {
	cmd := execx.Cmd{
		Path:   d.opts.Toolchain.QuantizeBin,
		Args:   []string{fp16Path, outPath, method},
		Dir:    d.opts.WorkDir,
		Stdout: d.opts.Stdout,
		Stderr: d.opts.Stderr,
	}
	res, err := d.opts.Runner.Run(ctx, cmd)
	if err != nil {
		d.say("An error occurred during quantization: %v", err)
		r := failed("quantization failed", err)
		r.ExitCode, r.Output = res.ExitCode, res.Stderr
		return r
	}
	d.say("Quantization with method '%s' completed successfully.", method)
	r := ok("quantized to " + outPath)
	r.ExitCode = res.ExitCode
	return r
}
