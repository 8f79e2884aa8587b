package config

import (
	"os"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvToken      = "HF_TOKEN"
	EnvEndpoint   = "HF_ENDPOINT"
	EnvLogLevel   = "HFQUANT_LOG_LEVEL"
	EnvOnFailure  = "HFQUANT_ON_FAILURE"
	EnvLlamaDir   = "HFQUANT_LLAMA_DIR"
	EnvWorkDir    = "HFQUANT_WORKDIR"
	EnvListen     = "HFQUANT_LISTEN"
	EnvCORSOrigin = "HFQUANT_CORS_ORIGINS"
	EnvTimeout    = "HFQUANT_STAGE_TIMEOUT"
)

// FromEnv builds a partial Config from the process environment. Unset
// variables leave the corresponding field empty so Merge skips it.
func FromEnv() Config {
	return Config{
		Token:        envStr(EnvToken, ""),
		HFEndpoint:   envStr(EnvEndpoint, ""),
		LogLevel:     envStr(EnvLogLevel, ""),
		OnFailure:    envStr(EnvOnFailure, ""),
		LlamaDir:     envStr(EnvLlamaDir, ""),
		WorkDir:      envStr(EnvWorkDir, ""),
		Listen:       envStr(EnvListen, ""),
		CORSOrigins:  splitCSV(envStr(EnvCORSOrigin, "")),
		StageTimeout: envStr(EnvTimeout, ""),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
