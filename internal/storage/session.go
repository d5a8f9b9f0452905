package storage

import (
	"context"
	"fmt"
)

// Querier is the read contract the hierarchy builders consume. *Session is
// the database-backed implementation; tests provide fakes.
type Querier interface {
	Table() string
	Column() string
	BoundingBox(ctx context.Context) (BBox, error)
	ApproxPointCount(ctx context.Context, box BBox) (int64, error)
	PatchCount(ctx context.Context, box BBox) (int64, error)
}

// Session is a read handle over one loaded dataset. The hierarchy builders
// query it for the persisted bounding box and aggregate counts; they never
// see the connection directly.
type Session struct {
	store  *Store
	table  string // schema-qualified, validated
	column string
}

// Session returns a handle for the given table and column. Both names must
// already be validated identifiers.
func (s *Store) Session(table, column string) *Session {
	return &Session{store: s, table: table, column: column}
}

// Table returns the schema-qualified table name.
func (s *Session) Table() string { return s.table }

// Column returns the patch column name.
func (s *Session) Column() string { return s.column }

// BoundingBox reads the full extent of the persisted patches. This reflects
// the data actually stored, which can differ from the source file summary.
func (s *Session) BoundingBox(ctx context.Context) (BBox, error) {
	q := fmt.Sprintf(`
		SELECT min(pc_patchmin(%[1]s, 'x')), min(pc_patchmin(%[1]s, 'y')), min(pc_patchmin(%[1]s, 'z')),
		       max(pc_patchmax(%[1]s, 'x')), max(pc_patchmax(%[1]s, 'y')), max(pc_patchmax(%[1]s, 'z'))
		FROM %[2]s`, s.column, s.table)

	var b BBox
	err := s.store.QueryRowContext(ctx, q).Scan(
		&b.Xmin, &b.Ymin, &b.Zmin, &b.Xmax, &b.Ymax, &b.Zmax)
	if err != nil {
		return BBox{}, fmt.Errorf("failed to read bounding box of %s: %w", s.table, err)
	}
	return b, nil
}

// ApproxPointCount sums the per-patch point counts of every patch whose
// envelope overlaps box. Patches straddling the box edge are counted whole,
// which is the approximation the LOD hierarchy accepts.
func (s *Session) ApproxPointCount(ctx context.Context, box BBox) (int64, error) {
	q := fmt.Sprintf(`
		SELECT coalesce(sum(pc_numpoints(%[1]s)), 0)
		FROM %[2]s
		WHERE geometry(%[1]s) &&& $1::box3d`, s.column, s.table)

	var n int64
	if err := s.store.QueryRowContext(ctx, q, box.Box3D()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count points in %s: %w", s.table, err)
	}
	return n, nil
}

// PatchCount counts patches overlapping box.
func (s *Session) PatchCount(ctx context.Context, box BBox) (int64, error) {
	q := fmt.Sprintf(`
		SELECT count(*)
		FROM %[2]s
		WHERE geometry(%[1]s) &&& $1::box3d`, s.column, s.table)

	var n int64
	if err := s.store.QueryRowContext(ctx, q, box.Box3D()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count patches in %s: %w", s.table, err)
	}
	return n, nil
}
