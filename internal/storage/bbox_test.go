package storage

import "testing"

func TestBBoxMidpoint(t *testing.T) {
	b := BBox{Xmin: -10, Ymin: 0, Zmin: 2, Xmax: 10, Ymax: 40, Zmax: 6}
	x, y, z := b.Midpoint()
	if x != 0 || y != 20 || z != 4 {
		t.Errorf("Midpoint() = (%g, %g, %g), want (0, 20, 4)", x, y, z)
	}
}

func TestBBoxJoin(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		sep  string
		want string
	}{
		{
			"integral underscores",
			BBox{Xmax: 10, Ymax: 20, Zmax: 5},
			"_",
			"0_0_0_10_20_5",
		},
		{
			"fractional commas",
			BBox{Xmin: 0.5, Ymin: -1.25, Zmin: 0, Xmax: 2, Ymax: 3, Zmax: 4.75},
			",",
			"0.5,-1.25,0,2,3,4.75",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Join(tt.sep); got != tt.want {
				t.Errorf("Join(%q) = %q, want %q", tt.sep, got, tt.want)
			}
		})
	}
}

func TestBBoxBox3D(t *testing.T) {
	b := BBox{Xmin: 1, Ymin: 2, Zmin: 3, Xmax: 4, Ymax: 5, Zmax: 6}
	want := "BOX3D(1 2 3, 4 5 6)"
	if got := b.Box3D(); got != want {
		t.Errorf("Box3D() = %q, want %q", got, want)
	}
}

func TestBBoxOctant(t *testing.T) {
	b := BBox{Xmax: 2, Ymax: 4, Zmax: 8}

	tests := []struct {
		i    int
		want BBox
	}{
		{0, BBox{Xmax: 1, Ymax: 2, Zmax: 4}},
		{1, BBox{Xmin: 1, Xmax: 2, Ymax: 2, Zmax: 4}},
		{2, BBox{Ymin: 2, Xmax: 1, Ymax: 4, Zmax: 4}},
		{4, BBox{Zmin: 4, Xmax: 1, Ymax: 2, Zmax: 8}},
		{7, BBox{Xmin: 1, Ymin: 2, Zmin: 4, Xmax: 2, Ymax: 4, Zmax: 8}},
	}

	for _, tt := range tests {
		if got := b.Octant(tt.i); got != tt.want {
			t.Errorf("Octant(%d) = %+v, want %+v", tt.i, got, tt.want)
		}
	}
}

func TestBBoxOctantsTile(t *testing.T) {
	// The eight octants exactly tile the parent volume.
	b := BBox{Xmin: -1, Ymin: -2, Zmin: -3, Xmax: 5, Ymax: 6, Zmax: 7}
	parentVolume := (b.Xmax - b.Xmin) * (b.Ymax - b.Ymin) * (b.Zmax - b.Zmin)

	var sum float64
	for i := 0; i < 8; i++ {
		o := b.Octant(i)
		sum += (o.Xmax - o.Xmin) * (o.Ymax - o.Ymin) * (o.Zmax - o.Zmin)
	}
	if sum != parentVolume {
		t.Errorf("octant volumes sum to %g, want %g", sum, parentVolume)
	}
}
