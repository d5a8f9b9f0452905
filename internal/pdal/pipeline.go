package pdal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/banshee-data/lodstream/internal/config"
)

// Pipeline is the declarative stage list handed to `pdal pipeline`. Stage
// order is fixed: read, chip, reorder, write.
type Pipeline struct {
	Stages []any `json:"pipeline"`
}

// ReaderStage reads the source file with the format-specific PDAL reader.
type ReaderStage struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

// ChipperStage partitions the point set into patches of at most Capacity
// points.
type ChipperStage struct {
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

// RevertMortonStage reorders points along the space-filling curve.
type RevertMortonStage struct {
	Type string `json:"type"`
}

// WriterStage writes quantized patches into pgpointcloud.
type WriterStage struct {
	Type        string  `json:"type"`
	Connection  string  `json:"connection"`
	Schema      string  `json:"schema"`
	Table       string  `json:"table"`
	Column      string  `json:"column"`
	Compression string  `json:"compression"`
	SRID        string  `json:"srid"`
	Overwrite   bool    `json:"overwrite"`
	ScaleX      float64 `json:"scale_x"`
	ScaleY      float64 `json:"scale_y"`
	ScaleZ      float64 `json:"scale_z"`
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	OffsetZ     float64 `json:"offset_z"`
}

// Quantization carries the coordinate quantization parameters of the write
// stage. Scales are always strictly positive.
type Quantization struct {
	ScaleX, ScaleY, ScaleZ    float64
	OffsetX, OffsetY, OffsetZ float64
}

// NormalizeTable qualifies a bare table name with the default schema.
// A name already carrying one schema separator passes through unchanged;
// more than one separator is rejected.
func NormalizeTable(table, defaultSchema string) (string, error) {
	switch strings.Count(table, ".") {
	case 0:
		return defaultSchema + "." + table, nil
	case 1:
		return table, nil
	default:
		return "", &config.ConfigError{
			Field:  "table",
			Reason: fmt.Sprintf("%q has more than one schema separator", table),
		}
	}
}

// AssemblePipeline builds the four-stage ingestion pipeline. Pure: no I/O.
// The table must already be schema-qualified.
func AssemblePipeline(file, format, table, column string, q Quantization, srid string,
	chipCapacity int, connection string) (*Pipeline, error) {

	i := strings.IndexByte(table, '.')
	if i < 0 {
		return nil, &config.ConfigError{
			Field:  "table",
			Reason: fmt.Sprintf("%q is not schema-qualified", table),
		}
	}
	schema, tab := table[:i], table[i+1:]

	return &Pipeline{Stages: []any{
		ReaderStage{
			Type:     "readers." + format,
			Filename: file,
		},
		ChipperStage{
			Type:     "filters.chipper",
			Capacity: chipCapacity,
		},
		RevertMortonStage{
			Type: "filters.revertmorton",
		},
		WriterStage{
			Type:        "writers.pgpointcloud",
			Connection:  connection,
			Schema:      schema,
			Table:       tab,
			Column:      column,
			Compression: "none",
			SRID:        srid,
			Overwrite:   true,
			ScaleX:      q.ScaleX,
			ScaleY:      q.ScaleY,
			ScaleZ:      q.ScaleZ,
			OffsetX:     q.OffsetX,
			OffsetY:     q.OffsetY,
			OffsetZ:     q.OffsetZ,
		},
	}}, nil
}

// Encode serializes the pipeline to the JSON document PDAL consumes.
func (p *Pipeline) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode pipeline: %w", err)
	}
	return data, nil
}
