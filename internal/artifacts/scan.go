// Package artifacts lists the files a pipeline run left in the model directory.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hfquant/pkg/types"
)

// Scan lists *.gguf and *.bin files directly inside dir, sorted by name.
// A missing dir yields no artifacts and no error: earlier stages may have failed.
func Scan(dir string) ([]types.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []types.Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".gguf") && !strings.HasSuffix(lower, ".bin") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, types.Artifact{
			Name:      name,
			Path:      filepath.Join(dir, name),
			Quant:     QuantTag(name),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// QuantTag extracts the precision tag from a pipeline file name:
// "foo.fp16.bin" -> "F16", "foo.Q4_K_M.gguf" -> "Q4_K_M". Other names yield "".
func QuantTag(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".fp16.bin"):
		return "F16"
	case strings.HasSuffix(lower, ".gguf"):
		stem := name[:len(name)-len(".gguf")]
		if i := strings.LastIndex(stem, "."); i >= 0 {
			return strings.ToUpper(stem[i+1:])
		}
	}
	return ""
}
