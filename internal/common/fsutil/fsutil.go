package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading "~" or "~/" to the user's home directory.
// The "~user" form is rejected rather than guessed at.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	rest := path[1:]
	if rest != "" && rest[0] != '/' && rest[0] != filepath.Separator {
		return "", fmt.Errorf("expand %q: ~user paths are not supported", path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	// handle cases like ~/src/llama.cpp
	return filepath.Join(home, strings.TrimLeft(rest, "/"+string(filepath.Separator))), nil
}

// CheckFile returns nil when path exists and is a regular file (or a symlink to one).
func CheckFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ResolveIn joins rel onto dir unless rel is already absolute or dir is empty.
func ResolveIn(dir, rel string) string {
	if dir == "" || rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(dir, rel)
}
