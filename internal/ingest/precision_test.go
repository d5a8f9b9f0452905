package ingest

import (
	"testing"

	"github.com/banshee-data/lodstream/internal/pdal"
	"github.com/banshee-data/lodstream/internal/storage"
)

func summary(geographic bool, b storage.BBox) *pdal.Summary {
	return &pdal.Summary{
		Bounds: b,
		SRS:    pdal.SRS{IsGeographic: geographic},
	}
}

func TestPlanPrecisionGeographic(t *testing.T) {
	q := PlanPrecision(summary(true, storage.BBox{
		Xmin: 0, Xmax: 10, Ymin: 0, Ymax: 20, Zmin: 0, Zmax: 5,
	}), "las")

	if q.ScaleX != 1e-6 || q.ScaleY != 1e-6 || q.ScaleZ != 1e-2 {
		t.Errorf("scales = (%v, %v, %v), want (1e-6, 1e-6, 1e-2)", q.ScaleX, q.ScaleY, q.ScaleZ)
	}
	if q.OffsetX != 5.0 || q.OffsetY != 10.0 || q.OffsetZ != 2.5 {
		t.Errorf("offsets = (%v, %v, %v), want (5, 10, 2.5)", q.OffsetX, q.OffsetY, q.OffsetZ)
	}
}

func TestPlanPrecisionProjected(t *testing.T) {
	q := PlanPrecision(summary(false, storage.BBox{
		Xmin: 643000, Xmax: 645000, Ymin: 6860000, Ymax: 6862000, Zmin: 30, Zmax: 130,
	}), "laz")

	if q.ScaleX != 0.01 || q.ScaleY != 0.01 || q.ScaleZ != 0.01 {
		t.Errorf("scales = (%v, %v, %v), want (0.01, 0.01, 0.01)", q.ScaleX, q.ScaleY, q.ScaleZ)
	}
	if q.OffsetX != 644000 || q.OffsetY != 6861000 || q.OffsetZ != 80 {
		t.Errorf("offsets = (%v, %v, %v), want bbox midpoints", q.OffsetX, q.OffsetY, q.OffsetZ)
	}
}

func TestPlanPrecisionOffsetsRounded(t *testing.T) {
	q := PlanPrecision(summary(false, storage.BBox{
		Xmin: 0, Xmax: 1.111, Ymin: 0, Ymax: 2.229, Zmin: 0, Zmax: 0.007,
	}), "las")

	if q.OffsetX != 0.56 {
		t.Errorf("OffsetX = %v, want 0.56", q.OffsetX)
	}
	if q.OffsetY != 1.11 {
		t.Errorf("OffsetY = %v, want 1.11", q.OffsetY)
	}
	if q.OffsetZ != 0 {
		t.Errorf("OffsetZ = %v, want 0", q.OffsetZ)
	}
}

func TestPlanPrecisionE57Override(t *testing.T) {
	// E57 summaries report empty bounds; the override must win over the
	// reference classification, geographic or not.
	for _, geographic := range []bool{true, false} {
		q := PlanPrecision(summary(geographic, storage.BBox{
			Xmin: -100, Xmax: 100, Ymin: -50, Ymax: 50, Zmin: 1, Zmax: 9,
		}), "e57")

		if q.ScaleX != 1 || q.ScaleY != 1 || q.ScaleZ != 1 {
			t.Errorf("geographic=%v: scales = (%v, %v, %v), want (1, 1, 1)",
				geographic, q.ScaleX, q.ScaleY, q.ScaleZ)
		}
		if q.OffsetX != 0 || q.OffsetY != 0 || q.OffsetZ != 0 {
			t.Errorf("geographic=%v: offsets = (%v, %v, %v), want (0, 0, 0)",
				geographic, q.OffsetX, q.OffsetY, q.OffsetZ)
		}
	}
}

func TestPlanPrecisionE57CaseInsensitive(t *testing.T) {
	q := PlanPrecision(summary(false, storage.BBox{Xmax: 10}), "E57")
	if q.ScaleX != 1 {
		t.Errorf("ScaleX = %v, want override to apply for upper-case format", q.ScaleX)
	}
}
