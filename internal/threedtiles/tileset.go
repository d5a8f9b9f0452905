// Package threedtiles builds the bounding-volume tileset document used by
// 3D Tiles clients to stream the dataset progressively.
package threedtiles

import (
	"context"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lodstream/internal/lod"
	"github.com/banshee-data/lodstream/internal/storage"
)

// rootGeometricError is the screen-space error of the coarsest level. Each
// deeper level halves it.
const rootGeometricError = 500.0

// Tileset is the root document.
type Tileset struct {
	Asset          Asset   `json:"asset"`
	GeometricError float64 `json:"geometricError"`
	Root           Tile    `json:"root"`
}

// Asset identifies the tileset format version.
type Asset struct {
	Version string `json:"version"`
}

// Tile is one node of the bounding-volume hierarchy.
type Tile struct {
	BoundingVolume BoundingVolume `json:"boundingVolume"`
	GeometricError float64        `json:"geometricError"`
	Refine         string         `json:"refine,omitempty"`
	Content        *Content       `json:"content,omitempty"`
	Children       []Tile         `json:"children,omitempty"`
}

// BoundingVolume is an oriented box: center followed by the three
// half-axis vectors.
type BoundingVolume struct {
	Box [12]float64 `json:"box"`
}

// Content points a client at the tile's point data.
type Content struct {
	URL string `json:"url"`
}

// Encode serializes the tileset document.
func (t *Tileset) Encode() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tileset: %w", err)
	}
	return data, nil
}

// boundingBox converts an axis-aligned BBox into a tile bounding volume.
func boundingBox(b storage.BBox) BoundingVolume {
	cx, cy, cz := b.Midpoint()
	center := r3.Vec{X: cx, Y: cy, Z: cz}
	half := r3.Scale(0.5, r3.Vec{
		X: b.Xmax - b.Xmin,
		Y: b.Ymax - b.Ymin,
		Z: b.Zmax - b.Zmin,
	})
	return BoundingVolume{Box: [12]float64{
		center.X, center.Y, center.Z,
		half.X, 0, 0,
		0, half.Y, 0,
		0, 0, half.Z,
	}}
}

// Builder builds tilesets from aggregate patch counts. It implements
// lod.TilesetBuilder.
type Builder struct{}

// BuildFromStore walks the octree between lodMin and lodMax and emits one
// tile per non-empty octant, with content URLs pointing at the streaming
// server. Tiles use additive refinement: each level adds points to its
// parent's.
func (Builder) BuildFromStore(ctx context.Context, s storage.Querier, serverURL string, lodMax int, bbox storage.BBox, lodMin int) (lod.Hierarchy, error) {
	root, err := buildTile(ctx, s, serverURL, bbox, lodMin, lodMax, rootGeometricError)
	if err != nil {
		return nil, err
	}
	if root == nil {
		root = &Tile{BoundingVolume: boundingBox(bbox), Refine: "ADD"}
	}
	return &Tileset{
		Asset:          Asset{Version: "1.0"},
		GeometricError: rootGeometricError,
		Root:           *root,
	}, nil
}

func buildTile(ctx context.Context, s storage.Querier, serverURL string, box storage.BBox, level, lodMax int, geomErr float64) (*Tile, error) {
	n, err := s.PatchCount(ctx, box)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	tile := &Tile{
		BoundingVolume: boundingBox(box),
		GeometricError: geomErr,
		Refine:         "ADD",
		Content:        &Content{URL: contentURL(serverURL, s, box, level)},
	}
	if level == lodMax {
		tile.GeometricError = 0
		return tile, nil
	}

	for i := 0; i < 8; i++ {
		child, err := buildTile(ctx, s, serverURL, box.Octant(i), level+1, lodMax, geomErr/2)
		if err != nil {
			return nil, err
		}
		if child != nil {
			tile.Children = append(tile.Children, *child)
		}
	}
	return tile, nil
}

func contentURL(serverURL string, s storage.Querier, box storage.BBox, level int) string {
	return fmt.Sprintf("%s/3dtiles/read.pnts?table=%s&column=%s&lod=%d&bounds=[%s]",
		serverURL, s.Table(), s.Column(), level, box.Join(","))
}
