package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/lodstream/internal/config"
	"github.com/banshee-data/lodstream/internal/pdal"
	"github.com/banshee-data/lodstream/internal/potree"
	"github.com/banshee-data/lodstream/internal/security"
	"github.com/banshee-data/lodstream/internal/srs"
	"github.com/banshee-data/lodstream/internal/storage"
	"github.com/banshee-data/lodstream/internal/timeutil"
)

// outputSchemaScale is the fixed scale of the output schema record the
// streaming client consumes, decoupled from the ingestion quantization.
const outputSchemaScale = 0.01

// Store is the slice of the storage collaborator the driver needs.
type Store interface {
	CreateMetadataTable(ctx context.Context) error
	Execute(ctx context.Context, statements string) error
	UpdateMetadata(ctx context.Context, table, column, srid string,
		scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ float64) error
	AddOutputSchema(ctx context.Context, table, column string,
		scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ float64,
		srid, pointSchema string) error
	RecordLoad(ctx context.Context, r storage.LoadRecord) error
}

// PDALTool is the slice of the pdal package the driver needs.
type PDALTool interface {
	Info(ctx context.Context, file string) (*pdal.Summary, error)
	Pipeline(ctx context.Context, pipelinePath string) error
}

// SRIDResolver resolves a native projection string.
type SRIDResolver interface {
	Resolve(native string) srs.Resolution
}

// ProgressFunc receives one message per driver step.
type ProgressFunc func(msg string)

// Driver runs the ingestion sequence. Each step is fatal on failure: an
// aborted run can leave the target table partial, and rerunning with the
// writer's overwrite semantics is the recovery path.
type Driver struct {
	Store    Store
	PDAL     PDALTool
	Resolver SRIDResolver
	Clock    timeutil.Clock
	Cfg      config.Config
	Progress ProgressFunc
}

// Result describes a completed load.
type Result struct {
	Table        string
	Column       string
	Resolution   srs.Resolution
	Quantization pdal.Quantization
	NumPoints    int64
	Duration     time.Duration
	PipelinePath string
}

func (d *Driver) progress(msg string) {
	if d.Progress != nil {
		d.Progress(msg)
	}
}

// Run ingests one file into the given table. The table name may be bare, in
// which case it is qualified with the configured default schema.
func (d *Driver) Run(ctx context.Context, file, table, column string) (*Result, error) {
	start := d.Clock.Now()

	qualified, err := pdal.NormalizeTable(table, d.Cfg.Schema)
	if err != nil {
		return nil, err
	}
	if _, _, err := storage.QualifiedTable(qualified); err != nil {
		return nil, &config.ConfigError{Field: "table", Reason: err.Error()}
	}
	if !storage.ValidIdent(column) {
		return nil, &config.ConfigError{Field: "column", Reason: fmt.Sprintf("%q is not a valid identifier", column)}
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))

	d.progress("Creating metadata table")
	if err := d.Store.CreateMetadataTable(ctx); err != nil {
		return nil, err
	}

	d.progress("Loading point clouds into database")
	summary, err := d.PDAL.Info(ctx, file)
	if err != nil {
		return nil, err
	}

	quant := PlanPrecision(summary, format)
	res := d.Resolver.Resolve(summary.SRS.Proj4)

	pipeline, err := pdal.AssemblePipeline(file, format, qualified, column,
		quant, res.SRID, d.Cfg.ChipCapacity, d.Cfg.WriterConnection())
	if err != nil {
		return nil, err
	}

	pipelinePath, err := d.writePipeline(file, table, pipeline)
	if err != nil {
		return nil, err
	}
	if err := d.PDAL.Pipeline(ctx, pipelinePath); err != nil {
		return nil, err
	}

	d.progress("Creating indexes")
	if err := d.Store.Execute(ctx, indexStatements(qualified, column)); err != nil {
		return nil, err
	}

	d.progress("Adding metadata")
	if err := d.Store.UpdateMetadata(ctx, qualified, column, res.SRID,
		quant.ScaleX, quant.ScaleY, quant.ScaleZ,
		quant.OffsetX, quant.OffsetY, quant.OffsetZ); err != nil {
		return nil, err
	}
	// The output schema record carries the fixed client-facing scale on all
	// axes regardless of the ingestion quantization.
	if err := d.Store.AddOutputSchema(ctx, qualified, column,
		outputSchemaScale, outputSchemaScale, outputSchemaScale,
		quant.OffsetX, quant.OffsetY, quant.OffsetZ,
		res.SRID, potree.Schema); err != nil {
		return nil, err
	}

	duration := d.Clock.Since(start)
	if err := d.Store.RecordLoad(ctx, storage.LoadRecord{
		ID:         uuid.NewString(),
		Table:      qualified,
		Column:     column,
		SourceFile: file,
		Format:     format,
		NumPoints:  summary.NumPoints,
		SRID:       res.SRID,
		Duration:   duration,
	}); err != nil {
		return nil, err
	}

	return &Result{
		Table:        qualified,
		Column:       column,
		Resolution:   res,
		Quantization: quant,
		NumPoints:    summary.NumPoints,
		Duration:     duration,
		PipelinePath: pipelinePath,
	}, nil
}

// writePipeline serializes the pipeline document next to the other
// temporary files in the working directory.
func (d *Driver) writePipeline(file, table string, p *pdal.Pipeline) (string, error) {
	basename := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name := fmt.Sprintf("%s_%s_pipeline.json",
		security.SanitizeFilename(basename), security.SanitizeFilename(table))
	path := filepath.Join(d.Cfg.WorkDir, name)

	if err := security.ValidatePathWithinDirectory(path, d.Cfg.WorkDir); err != nil {
		return "", err
	}

	data, err := p.Encode()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write pipeline file: %w", err)
	}
	return path, nil
}

// indexStatements is the post-load block: spatial index, morton ordering
// column, its population and its index. Identifiers are validated by Run
// before assembly.
func indexStatements(table, column string) string {
	return fmt.Sprintf(`
		create index on %[1]s using gist(geometry(%[2]s));
		alter table %[1]s add column morton bigint;
		select Morton_Update('%[1]s', '%[2]s', 'morton', 64, TRUE);
		create index on %[1]s(morton);
	`, table, column)
}
