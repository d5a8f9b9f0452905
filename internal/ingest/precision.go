// Package ingest orchestrates a single point-cloud load: precision
// planning, SRID resolution, pipeline execution and metadata persistence.
package ingest

import (
	"math"
	"strings"

	"github.com/banshee-data/lodstream/internal/pdal"
)

// geographic coordinates quantize to micro-degrees horizontally and
// centimeters vertically; projected and geocentric coordinates to
// centimeters on all axes.
var (
	geographicScales = [3]float64{1e-6, 1e-6, 1e-2}
	projectedScales  = [3]float64{0.01, 0.01, 0.01}
)

// PlanPrecision derives the quantization parameters for a dataset.
// Offsets are the bounding-box midpoint per axis, rounded to two decimals.
// The E57 override is applied last: its summaries report empty bounds, so
// the midpoint cannot be trusted and quantization is disabled.
func PlanPrecision(summary *pdal.Summary, format string) pdal.Quantization {
	scales := projectedScales
	if summary.SRS.IsGeographic {
		scales = geographicScales
	}

	mx, my, mz := summary.Bounds.Midpoint()
	q := pdal.Quantization{
		ScaleX: scales[0], ScaleY: scales[1], ScaleZ: scales[2],
		OffsetX: round2(mx), OffsetY: round2(my), OffsetZ: round2(mz),
	}

	if strings.EqualFold(format, "e57") {
		q = pdal.Quantization{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
	}
	return q
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
