// Package lod drives the two-phase LOD hierarchy precomputation: the
// greyhound cache file and the 3D Tiles tileset document.
package lod

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/lodstream/internal/security"
	"github.com/banshee-data/lodstream/internal/storage"
)

// CacheExt is the extension of the hierarchy cache file.
const CacheExt = ".hcy"

// TilesetFile is the fixed name of the tileset document in the working
// directory.
const TilesetFile = "tileset.json"

// Hierarchy is the opaque output of a builder.
type Hierarchy interface {
	Encode() ([]byte, error)
}

// CacheBuilder builds the cache-oriented hierarchy.
type CacheBuilder interface {
	BuildFromStore(ctx context.Context, s storage.Querier, lodMin, lodMax int, bbox storage.BBox) (Hierarchy, error)
}

// TilesetBuilder builds the bounding-volume tileset.
type TilesetBuilder interface {
	BuildFromStore(ctx context.Context, s storage.Querier, serverURL string, lodMax int, bbox storage.BBox, lodMin int) (Hierarchy, error)
}

// ProgressFunc receives one message per coordinator phase.
type ProgressFunc func(msg string)

// Coordinator invokes the hierarchy builders and persists their outputs.
type Coordinator struct {
	WorkDir   string
	ServerURL string
	LODMin    int
	LODMax    int
	Cache     CacheBuilder
	Tileset   TilesetBuilder
	Progress  ProgressFunc
}

// CacheFilename derives the deterministic cache name. Every input is part
// of the name, so any change to the table, column, LOD bounds or bounding
// box invalidates the cache by construction.
func CacheFilename(table, column string, lodMin, lodMax int, bbox storage.BBox) string {
	return fmt.Sprintf("%s_%s_%d_%d_%s%s",
		table, column, lodMin, lodMax, bbox.Join("_"), CacheExt)
}

func (c *Coordinator) progress(msg string) {
	if c.Progress != nil {
		c.Progress(msg)
	}
}

// Run reads the persisted bounding box back from storage, then builds and
// persists both artifacts. The box reflects the data actually stored, not
// the source file summary.
func (c *Coordinator) Run(ctx context.Context, session storage.Querier) error {
	bbox, err := session.BoundingBox(ctx)
	if err != nil {
		return err
	}

	c.progress("Building greyhound hierarchy")
	cache, err := c.Cache.BuildFromStore(ctx, session, c.LODMin, c.LODMax, bbox)
	if err != nil {
		return fmt.Errorf("cache hierarchy build failed: %w", err)
	}
	name := CacheFilename(session.Table(), session.Column(), c.LODMin, c.LODMax, bbox)
	if err := c.writeArtifact(name, cache); err != nil {
		return err
	}

	c.progress("Building 3Dtiles tileset")
	tileset, err := c.Tileset.BuildFromStore(ctx, session, c.ServerURL, c.LODMax, bbox, c.LODMin)
	if err != nil {
		return fmt.Errorf("tileset build failed: %w", err)
	}
	return c.writeArtifact(TilesetFile, tileset)
}

func (c *Coordinator) writeArtifact(name string, h Hierarchy) error {
	path := filepath.Join(c.WorkDir, name)
	if err := security.ValidatePathWithinDirectory(path, c.WorkDir); err != nil {
		return err
	}
	data, err := h.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
