package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	exp, err := ExpandHome("~/llama.cpp")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if exp != filepath.Join(home, "llama.cpp") {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
	for _, in := range []string{"~alice/x", "~alice"} {
		if got, err := ExpandHome(in); err == nil {
			t.Fatalf("ExpandHome(%q) = %q, want error", in, got)
		}
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "quantize")
	if err := os.WriteFile(f, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := CheckFile(f); err != nil {
		t.Fatalf("expected file ok, got %v", err)
	}
	if err := CheckFile(dir); err == nil {
		t.Fatalf("expected error for directory")
	}
	if err := CheckFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveIn(t *testing.T) {
	cases := []struct{ dir, rel, want string }{
		{"", "llama.cpp/convert.py", "llama.cpp/convert.py"},
		{"/work", "llama.cpp/convert.py", filepath.Join("/work", "llama.cpp/convert.py")},
		{"/work", "/opt/quantize", "/opt/quantize"},
		{"/work", "", ""},
	}
	for _, c := range cases {
		if got := ResolveIn(c.dir, c.rel); got != c.want {
			t.Fatalf("ResolveIn(%q,%q) = %q, want %q", c.dir, c.rel, got, c.want)
		}
	}
}
