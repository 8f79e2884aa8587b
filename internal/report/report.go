// Package report persists and renders the outcome of a pipeline run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"hfquant/pkg/types"
)

// Write serializes rep to path: YAML for .yaml/.yml, JSON otherwise.
// Parent directories are created as needed.
func Write(path string, rep *types.Report) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(rep)
	default:
		b, err = json.MarshalIndent(rep, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Summary renders one row per stage, followed by the artifacts table when
// the model directory holds any.
func Summary(w io.Writer, rep *types.Report) error {
	tbl := tablewriter.NewWriter(w)
	tbl.Header("Stage", "Outcome", "Exit", "Duration", "Detail")
	for _, s := range rep.Stages {
		exit := "-"
		if s.ExitCode != nil {
			exit = strconv.Itoa(*s.ExitCode)
		}
		detail := s.Message
		if s.Error != "" {
			detail = s.Error
		}
		row := []string{s.Stage, s.Outcome, exit, fmt.Sprintf("%.1fs", s.DurationSeconds), detail}
		if err := tbl.Append(row); err != nil {
			return err
		}
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	if len(rep.Artifacts) == 0 {
		return nil
	}

	at := tablewriter.NewWriter(w)
	at.Header("Artifact", "Quant", "Size")
	for _, a := range rep.Artifacts {
		if err := at.Append([]string{a.Path, a.Quant, units.HumanSize(float64(a.SizeBytes))}); err != nil {
			return err
		}
	}
	return at.Render()
}
