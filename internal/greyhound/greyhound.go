// Package greyhound builds the nested octant point-count hierarchy the
// greyhound-style streaming endpoints cache.
package greyhound

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/lodstream/internal/lod"
	"github.com/banshee-data/lodstream/internal/storage"
)

// octants names the eight children of a node in the hemisphere convention
// the streaming clients expect: north/south, east/west, up/down.
var octants = [8]string{"swd", "sed", "nwd", "ned", "swu", "seu", "nwu", "neu"}

// octantBox maps an octant name index to the BBox.Octant bit layout
// (bit 0 east, bit 1 north, bit 2 up).
func octantBox(b storage.BBox, i int) storage.BBox {
	east := i & 1
	north := (i >> 1) & 1
	up := (i >> 2) & 1
	return b.Octant(east | north<<1 | up<<2)
}

// Node is one level of the hierarchy: its approximate point count plus the
// non-empty octants below it.
type Node struct {
	N        int64
	Children map[string]*Node
}

// MarshalJSON inlines the children next to "n", matching the document
// shape the streaming clients parse.
func (n *Node) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(n.Children)+1)
	doc["n"] = n.N
	for name, child := range n.Children {
		doc[name] = child
	}
	return json.Marshal(doc)
}

// Hierarchy is the encodable build output.
type Hierarchy struct {
	Root *Node
}

// Encode serializes the hierarchy to its JSON cache form.
func (h *Hierarchy) Encode() ([]byte, error) {
	data, err := json.Marshal(h.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hierarchy: %w", err)
	}
	return data, nil
}

// Builder builds hierarchies from aggregate patch counts. It implements
// lod.CacheBuilder.
type Builder struct{}

// BuildFromStore walks the octree from lodMin to lodMax, querying the
// approximate point count per octant. Empty octants are pruned.
func (Builder) BuildFromStore(ctx context.Context, s storage.Querier, lodMin, lodMax int, bbox storage.BBox) (lod.Hierarchy, error) {
	root, err := buildNode(ctx, s, bbox, lodMax-lodMin)
	if err != nil {
		return nil, err
	}
	if root == nil {
		root = &Node{}
	}
	return &Hierarchy{Root: root}, nil
}

func buildNode(ctx context.Context, s storage.Querier, box storage.BBox, depth int) (*Node, error) {
	n, err := s.ApproxPointCount(ctx, box)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	node := &Node{N: n}
	if depth == 0 {
		return node, nil
	}

	for i, name := range octants {
		child, err := buildNode(ctx, s, octantBox(box, i), depth-1)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		if node.Children == nil {
			node.Children = make(map[string]*Node)
		}
		node.Children[name] = child
	}
	return node, nil
}
