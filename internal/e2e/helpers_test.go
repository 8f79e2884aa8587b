package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"hfquant/internal/config"
)

const fakeGit = `#!/bin/sh
case "$1" in
lfs)
	echo "Updated git hooks."
	echo "Git LFS initialized."
	;;
clone)
	name=$(basename "$2")
	echo "Cloning into '$name'..." >&2
	mkdir -p "$name" || exit 128
	printf '%s' "$GIT_CONFIG_COUNT" > "$name/.git-config-count"
	;;
*)
	echo "unexpected: $*" >&2
	exit 2
	;;
esac
`

const fakePython = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
	if [ "$1" = "--outfile" ]; then out="$2"; fi
	shift
done
[ -n "$out" ] || { echo "no --outfile" >&2; exit 2; }
printf 'fp16' > "$out" || exit 1
echo "Wrote $out"
`

const fakeQuantize = `#!/bin/sh
[ -f "$1" ] || { echo "missing $1" >&2; exit 1; }
printf 'gguf' > "$2"
echo "main: quantize time = 1.00 ms" >&2
`

const failingQuantize = `#!/bin/sh
echo "llama_model_quantize: failed to quantize" >&2
exit 3
`

// workspace lays out a working directory holding a llama.cpp checkout and a
// bin directory with stand-ins for git and python, and returns a config
// file pointing at them.
func workspace(t *testing.T, quantize string) (workDir, cfgPath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-ins need a POSIX sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	workDir = filepath.Join(root, "work")
	bin := filepath.Join(root, "bin")
	llama := filepath.Join(workDir, "llama.cpp")
	for _, d := range []string{workDir, bin, llama} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	write := func(p, body string, mode os.FileMode) {
		if err := os.WriteFile(p, []byte(body), mode); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	write(filepath.Join(bin, "git"), fakeGit, 0o755)
	write(filepath.Join(bin, "python"), fakePython, 0o755)
	write(filepath.Join(llama, "convert.py"), "# stand-in\n", 0o644)
	write(filepath.Join(llama, "quantize"), quantize, 0o755)

	cfgPath = filepath.Join(root, "hfquant.yaml")
	write(cfgPath, "git: "+filepath.Join(bin, "git")+"\npython: "+filepath.Join(bin, "python")+"\nlog_level: debug\n", 0o644)

	for _, k := range []string{
		config.EnvToken, config.EnvEndpoint, config.EnvLogLevel, config.EnvOnFailure,
		config.EnvLlamaDir, config.EnvWorkDir, config.EnvListen, config.EnvCORSOrigin, config.EnvTimeout,
		"GIT_CONFIG_COUNT",
	} {
		t.Setenv(k, "")
	}
	return workDir, cfgPath
}
