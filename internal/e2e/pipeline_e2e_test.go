package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hfquant/internal/cli"
	"hfquant/pkg/types"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	code := cli.MainWithArgs(ctx, args, cli.Deps{
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &errb,
	})
	return code, out.String(), errb.String()
}

func readReport(t *testing.T, path string) types.Report {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep types.Report
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	return rep
}

// TestE2E_FullRun drives the CLI through real processes and checks the
// files each stage leaves behind.
func TestE2E_FullRun(t *testing.T) {
	workDir, cfgPath := workspace(t, fakeQuantize)
	reportPath := filepath.Join(workDir, "report.json")

	code, stdout, stderr := runCLI(t, "--config", cfgPath, "--workdir", workDir, "--report", reportPath,
		"https://huggingface.co/org/Foo-7B", "q4_k_m")
	if code != 0 {
		t.Fatalf("exit=%d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	for _, want := range []string{
		"Hugging Face token not found in environment variables.",
		"Git LFS initialized.",
		"Cloning into 'Foo-7B'...",
		"Repository cloned successfully.",
		"Model conversion to fp16 successful. Output:",
		"Wrote Foo-7B/foo-7b.fp16.bin",
		"Quantization with method 'q4_k_m' completed successfully.",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "main: quantize time") {
		t.Fatalf("quantizer diagnostics should pass through to stderr:\n%s", stderr)
	}

	for _, p := range []string{"Foo-7B/foo-7b.fp16.bin", "Foo-7B/foo-7b.Q4_K_M.gguf"} {
		if _, err := os.Stat(filepath.Join(workDir, p)); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
	if b, _ := os.ReadFile(filepath.Join(workDir, "Foo-7B", ".git-config-count")); len(b) != 0 {
		t.Fatalf("unauthenticated clone must not carry git credentials, got GIT_CONFIG_COUNT=%q", b)
	}

	rep := readReport(t, reportPath)
	if rep.Failed() || len(rep.Stages) != 4 {
		t.Fatalf("unexpected stages: %+v", rep.Stages)
	}
	if len(rep.Artifacts) != 2 || rep.Artifacts[0].Quant != "Q4_K_M" || rep.Artifacts[1].Quant != "F16" {
		t.Fatalf("unexpected artifacts: %+v", rep.Artifacts)
	}
}

// TestE2E_QuantizerExitStatus checks that a failing quantizer is recorded
// with its exit status and that the policy decides the process status.
func TestE2E_QuantizerExitStatus(t *testing.T) {
	cases := []struct {
		policy   string
		wantCode int
	}{
		{"continue", 0},
		{"stop", 1},
	}
	for _, c := range cases {
		t.Run(c.policy, func(t *testing.T) {
			workDir, cfgPath := workspace(t, failingQuantize)
			reportPath := filepath.Join(workDir, "report.json")
			code, stdout, stderr := runCLI(t, "--config", cfgPath, "--workdir", workDir, "--report", reportPath,
				"--on-failure", c.policy, "https://huggingface.co/org/Foo-7B", "q2_k")
			if code != c.wantCode {
				t.Fatalf("exit=%d want %d\nstdout:\n%s\nstderr:\n%s", code, c.wantCode, stdout, stderr)
			}
			if !strings.Contains(stdout, "An error occurred during quantization:") {
				t.Fatalf("stdout:\n%s", stdout)
			}
			rep := readReport(t, reportPath)
			q := rep.Stages[len(rep.Stages)-1]
			if q.Stage != "quantize" || q.Outcome != "failed" || q.ExitCode == nil || *q.ExitCode != 3 {
				t.Fatalf("unexpected quantize stage: %+v", q)
			}
		})
	}
}
