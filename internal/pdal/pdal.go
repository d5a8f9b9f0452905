// Package pdal wraps the external PDAL command line tool: dataset
// introspection (pdal info) and pipeline execution (pdal pipeline).
package pdal

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/banshee-data/lodstream/internal/storage"
)

// ToolError reports an external tool that exited non-zero or produced
// output we could not parse. It is fatal: the run aborts.
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %v, output: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// CommandRunner abstracts subprocess execution so tests can script tool
// output without a PDAL install.
type CommandRunner interface {
	// Run executes the command and returns the combined output (stdout+stderr).
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. Calls block until the tool exits;
// there is no timeout beyond ctx cancellation.
type ExecRunner struct{}

// Run executes the command and returns combined output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SRS is the spatial reference part of a dataset summary.
type SRS struct {
	IsGeographic bool   `json:"isgeographic"`
	Proj4        string `json:"proj4"`
}

// Summary is the dataset summary reported by pdal info. It is produced once
// per run and never mutated afterwards.
type Summary struct {
	Bounds    storage.BBox
	NumPoints int64
	SRS       SRS
}

// infoDocument mirrors the JSON layout of `pdal info --summary`.
type infoDocument struct {
	Summary struct {
		Bounds struct {
			X axisRange `json:"X"`
			Y axisRange `json:"Y"`
			Z axisRange `json:"Z"`
		} `json:"bounds"`
		NumPoints int64 `json:"num_points"`
		SRS       SRS   `json:"srs"`
	} `json:"summary"`
}

type axisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Tool invokes PDAL through a CommandRunner.
type Tool struct {
	Runner CommandRunner
}

// NewTool returns a Tool backed by real subprocess execution.
func NewTool() *Tool {
	return &Tool{Runner: ExecRunner{}}
}

// Info runs `pdal info --summary` on the file and parses the result.
func (t *Tool) Info(ctx context.Context, file string) (*Summary, error) {
	out, err := t.Runner.Run(ctx, "pdal", "info", "--summary", file)
	if err != nil {
		return nil, &ToolError{Tool: "pdal info", Output: string(out), Err: err}
	}

	var doc infoDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, &ToolError{Tool: "pdal info", Output: string(out), Err: fmt.Errorf("unparsable summary: %w", err)}
	}

	s := doc.Summary
	return &Summary{
		Bounds: storage.BBox{
			Xmin: s.Bounds.X.Min, Ymin: s.Bounds.Y.Min, Zmin: s.Bounds.Z.Min,
			Xmax: s.Bounds.X.Max, Ymax: s.Bounds.Y.Max, Zmax: s.Bounds.Z.Max,
		},
		NumPoints: s.NumPoints,
		SRS:       s.SRS,
	}, nil
}

// Pipeline runs `pdal pipeline` on a serialized pipeline file.
func (t *Tool) Pipeline(ctx context.Context, pipelinePath string) error {
	out, err := t.Runner.Run(ctx, "pdal", "pipeline", pipelinePath)
	if err != nil {
		return &ToolError{Tool: "pdal pipeline", Output: string(out), Err: err}
	}
	return nil
}
