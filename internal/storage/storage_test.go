package storage

import "testing"

func TestValidIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  bool
	}{
		{"points", true},
		{"_private", true},
		{"Points2", true},
		{"", false},
		{"2points", false},
		{"pa-01", false},
		{"points; DROP TABLE users", false},
		{`pts"`, false},
	}

	for _, tt := range tests {
		if got := ValidIdent(tt.ident); got != tt.want {
			t.Errorf("ValidIdent(%q) = %v, want %v", tt.ident, got, tt.want)
		}
	}
}

func TestQualifiedTable(t *testing.T) {
	tests := []struct {
		table      string
		wantSchema string
		wantTab    string
		wantErr    bool
	}{
		{"public.pts", "public", "pts", false},
		{"lidar.sweep_2024", "lidar", "sweep_2024", false},
		{"pts", "", "", true},
		{"public.a.b", "", "", true},
		{"public.", "", "", true},
		{".pts", "", "", true},
		{"pub lic.pts", "", "", true},
	}

	for _, tt := range tests {
		schema, tab, err := QualifiedTable(tt.table)
		if tt.wantErr {
			if err == nil {
				t.Errorf("QualifiedTable(%q) should fail", tt.table)
			}
			continue
		}
		if err != nil {
			t.Errorf("QualifiedTable(%q) error: %v", tt.table, err)
			continue
		}
		if schema != tt.wantSchema || tab != tt.wantTab {
			t.Errorf("QualifiedTable(%q) = (%q, %q), want (%q, %q)",
				tt.table, schema, tab, tt.wantSchema, tt.wantTab)
		}
	}
}
