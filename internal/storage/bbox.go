package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// BBox is an axis-aligned box in the dataset's coordinate system. It is the
// six-scalar bounding volume shared by the summary extractor, the LOD
// coordinator and the hierarchy builders.
type BBox struct {
	Xmin, Ymin, Zmin float64
	Xmax, Ymax, Zmax float64
}

// Midpoint returns the center of the box on each axis.
func (b BBox) Midpoint() (x, y, z float64) {
	return b.Xmin + (b.Xmax-b.Xmin)/2,
		b.Ymin + (b.Ymax-b.Ymin)/2,
		b.Zmin + (b.Zmax-b.Zmin)/2
}

// Scalars returns the six coordinates in min-corner, max-corner order.
func (b BBox) Scalars() [6]float64 {
	return [6]float64{b.Xmin, b.Ymin, b.Zmin, b.Xmax, b.Ymax, b.Zmax}
}

// Join renders the six scalars joined by sep, with the shortest exact
// decimal representation per scalar. Used for cache filename derivation.
func (b BBox) Join(sep string) string {
	s := b.Scalars()
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, sep)
}

// Box3D renders the box as a PostGIS BOX3D literal.
func (b BBox) Box3D() string {
	return fmt.Sprintf("BOX3D(%g %g %g, %g %g %g)",
		b.Xmin, b.Ymin, b.Zmin, b.Xmax, b.Ymax, b.Zmax)
}

// Octant returns the i-th of the eight equal sub-boxes, i in [0, 8).
// Bit 0 selects the upper X half, bit 1 the upper Y half, bit 2 the
// upper Z half.
func (b BBox) Octant(i int) BBox {
	cx, cy, cz := b.Midpoint()
	o := BBox{Xmin: b.Xmin, Ymin: b.Ymin, Zmin: b.Zmin, Xmax: cx, Ymax: cy, Zmax: cz}
	if i&1 != 0 {
		o.Xmin, o.Xmax = cx, b.Xmax
	}
	if i&2 != 0 {
		o.Ymin, o.Ymax = cy, b.Ymax
	}
	if i&4 != 0 {
		o.Zmin, o.Zmax = cz, b.Zmax
	}
	return o
}
