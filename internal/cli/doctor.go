package cli

import (
	"context"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"hfquant/internal/common/fsutil"
	"hfquant/internal/config"
	"hfquant/internal/execx"
	"hfquant/internal/hfauth"
)

// Check is one preflight result.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Skip   bool   `json:"skip,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (c Check) status() string {
	switch {
	case c.Skip:
		return "skip"
	case c.OK:
		return "ok"
	default:
		return "FAIL"
	}
}

// Preflight verifies the external toolchain a run depends on. It does not
// clone, convert or write anything.
func Preflight(ctx context.Context, cfg config.Config, d *Deps) []Check {
	var out []Check
	look := func(name, prog string) {
		p, err := d.LookPath(prog)
		if err != nil {
			out = append(out, Check{Name: name, Detail: err.Error()})
			return
		}
		out = append(out, Check{Name: name, OK: true, Detail: p})
	}
	file := func(name, path string) {
		p := fsutil.ResolveIn(cfg.WorkDir, path)
		if err := fsutil.CheckFile(p); err != nil {
			out = append(out, Check{Name: name, Detail: err.Error()})
			return
		}
		out = append(out, Check{Name: name, OK: true, Detail: p})
	}

	look("git", cfg.Git)
	res, err := d.Runner.Run(ctx, execx.Cmd{Path: cfg.Git, Args: []string{"lfs", "version"}, Dir: cfg.WorkDir})
	if err != nil {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = err.Error()
		}
		out = append(out, Check{Name: "git-lfs", Detail: detail})
	} else {
		out = append(out, Check{Name: "git-lfs", OK: true, Detail: firstLine(res.Stdout)})
	}
	look("python", cfg.Python)
	file("convert script", cfg.ConvertScript)
	file("quantize binary", cfg.QuantizeBin)

	if strings.TrimSpace(cfg.Token) == "" {
		out = append(out, Check{Name: "hub token", Skip: true, Detail: config.EnvToken + " not set"})
	} else if s, err := d.NewAuth(cfg.HFEndpoint).Login(ctx, cfg.Token); err != nil {
		detail := err.Error()
		if hfauth.IsUnauthorized(err) {
			detail = "token rejected: " + detail
		}
		out = append(out, Check{Name: "hub token", Detail: detail})
	} else {
		out = append(out, Check{Name: "hub token", OK: true, Detail: "logged in as " + s.Identity.Name})
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func newDoctorCmd(fv *flagValues, d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that git, git-lfs, python and the llama.cpp tools are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fv.resolve(cmd, nil)
			if err != nil {
				return err
			}
			checks := Preflight(cmd.Context(), cfg, d)

			tbl := tablewriter.NewWriter(cmd.OutOrStdout())
			tbl.Header("Check", "Status", "Detail")
			failed := 0
			for _, c := range checks {
				if !c.OK && !c.Skip {
					failed++
				}
				if err := tbl.Append([]string{c.Name, c.status(), c.Detail}); err != nil {
					return err
				}
			}
			if err := tbl.Render(); err != nil {
				return err
			}
			if failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}
