package srs

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/lodstream/internal/testutil"
)

const lambert93 = `PROJCS["RGF93 / Lambert-93",
    GEOGCS["RGF93",
        DATUM["Reseau_Geodesique_Francais_1993",
            SPHEROID["GRS 1980",6378137,298.257222101],
            AUTHORITY["EPSG","6171"]],
        PRIMEM["Greenwich",0],
        UNIT["degree",0.0174532925199433]],
    PROJECTION["Lambert_Conformal_Conic_2SP"],
    PARAMETER["standard_parallel_1",49],
    PARAMETER["standard_parallel_2",44],
    UNIT["metre",1],
    AUTHORITY["EPSG","2154"]]`

const wgs84 = `GEOGCS["WGS 84",
    DATUM["WGS_1984",
        SPHEROID["WGS 84",6378137,298.257223563]],
    PRIMEM["Greenwich",0],
    UNIT["degree",0.0174532925199433],
    AUTHORITY["EPSG","4326"]]`

const localCS = `LOCAL_CS["arbitrary site grid",
    UNIT["metre",1],
    AXIS["X",EAST],
    AXIS["Y",NORTH]]`

func TestResolveInvalidInput(t *testing.T) {
	r := &Resolver{}
	tests := []struct {
		name   string
		native string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"garbage", "not a projection at all"},
		{"unterminated wkt", `PROJCS["broken`},
		{"proj4 without proj", "+ellps=GRS80 +units=m"},
		{"unknown wkt keyword", `FOOCS["x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.native)
			if got.SRID != DefaultSRID {
				t.Errorf("Resolve(%q).SRID = %q, want %q", tt.native, got.SRID, DefaultSRID)
			}
			if got.Source != SourceDefaultFallback {
				t.Errorf("Resolve(%q).Source = %v, want %v", tt.native, got.Source, SourceDefaultFallback)
			}
			if !got.Degraded() {
				t.Errorf("Resolve(%q).Degraded() = false, want true", tt.native)
			}
		})
	}
}

func TestResolveLocalCS(t *testing.T) {
	r := &Resolver{}
	got := r.Resolve(localCS)
	if got.Source != SourceLocalWKT {
		t.Fatalf("Source = %v, want %v", got.Source, SourceLocalWKT)
	}
	// A local system keeps its WKT verbatim as the identifier.
	if got.SRID != localCS {
		t.Errorf("SRID = %q, want the WKT input", got.SRID)
	}
}

func TestResolveAuthority(t *testing.T) {
	// An authority code must short-circuit: no definitions file is
	// configured, so reaching the scan path would degrade to the default.
	r := &Resolver{}
	tests := []struct {
		name   string
		native string
		want   string
	}{
		{"projected wkt", lambert93, "2154"},
		{"geographic wkt", wgs84, "4326"},
		{"proj4 init", "+init=epsg:2154 +proj=lcc +units=m", "2154"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.native)
			if got.SRID != tt.want || got.Source != SourceAuthority {
				t.Errorf("Resolve() = {%q, %v}, want {%q, %v}",
					got.SRID, got.Source, tt.want, SourceAuthority)
			}
		})
	}
}

func TestResolveDefinitionScan(t *testing.T) {
	proj4 := "+proj=lcc +lat_1=49 +lat_2=44 +units=m"
	defs := "# RGF93 / Lambert-93\n" +
		"<2154> +proj=lcc +lat_1=49 +lat_2=44 +units=m <>\n" +
		"<9999> +proj=tmerc +lat_0=0 <>\n"
	path := writeDefs(t, defs)

	r := &Resolver{DefinitionsPath: path}
	got := r.Resolve(proj4)
	if got.SRID != "2154" || got.Source != SourceDefinitionScan {
		t.Errorf("Resolve() = {%q, %v}, want {\"2154\", %v}", got.SRID, got.Source, SourceDefinitionScan)
	}
}

func TestResolveDefinitionScanFirstMatchWins(t *testing.T) {
	proj4 := "+proj=utm +zone=31 +units=m"
	defs := "<32631> +proj=utm +zone=31 +units=m <>\n" +
		"<25831> +proj=utm +zone=31 +units=m <>\n"
	path := writeDefs(t, defs)

	r := &Resolver{DefinitionsPath: path}
	if got := r.Resolve(proj4); got.SRID != "32631" {
		t.Errorf("SRID = %q, want first match 32631", got.SRID)
	}
}

func TestResolveDefinitionScanNoMatch(t *testing.T) {
	path := writeDefs(t, "<2154> +proj=lcc +lat_1=49 <>\n")
	r := &Resolver{DefinitionsPath: path}

	got := r.Resolve("+proj=sinu +lon_0=0")
	if got.SRID != DefaultSRID || got.Source != SourceDefaultFallback {
		t.Errorf("Resolve() = {%q, %v}, want default fallback", got.SRID, got.Source)
	}
}

func TestResolveMissingDefinitionsFile(t *testing.T) {
	r := &Resolver{DefinitionsPath: filepath.Join(t.TempDir(), "missing")}
	got := r.Resolve("+proj=sinu +lon_0=0")
	if got.SRID != DefaultSRID || got.Source != SourceDefaultFallback {
		t.Errorf("Resolve() = {%q, %v}, want default fallback", got.SRID, got.Source)
	}
}

func TestResolveForceProj4(t *testing.T) {
	// ForceProj4 returns the canonical PROJ.4 string without touching the
	// definitions file.
	r := &Resolver{ForceProj4: true}
	native := "+proj=lcc   +lat_1=49 +lat_2=44"
	got := r.Resolve(native)
	if got.Source != SourceForcedProj4 {
		t.Fatalf("Source = %v, want %v", got.Source, SourceForcedProj4)
	}
	if want := "+proj=lcc +lat_1=49 +lat_2=44"; got.SRID != want {
		t.Errorf("SRID = %q, want %q", got.SRID, want)
	}
}

func TestResolveWKTWithoutAuthority(t *testing.T) {
	// WKT cannot be re-exported to PROJ.4, so a WKT reference without an
	// authority annotation degrades to the default.
	noAuth := `PROJCS["nameless",
	    GEOGCS["base", DATUM["d", SPHEROID["s",6378137,298.25]], PRIMEM["Greenwich",0], UNIT["degree",0.017]],
	    PROJECTION["Transverse_Mercator"], UNIT["metre",1]]`
	r := &Resolver{}
	got := r.Resolve(noAuth)
	if got.SRID != DefaultSRID || got.Source != SourceDefaultFallback {
		t.Errorf("Resolve() = {%q, %v}, want default fallback", got.SRID, got.Source)
	}
}

func TestResolveGeocentricAuthorityIgnored(t *testing.T) {
	// A geocentric root is classified with the projected lookup category,
	// which a GEOCCS node cannot satisfy; the annotation is not consulted.
	geocentric := `GEOCCS["WGS 84 geocentric",
	    DATUM["WGS_1984", SPHEROID["WGS 84",6378137,298.257223563]],
	    PRIMEM["Greenwich",0], UNIT["metre",1],
	    AUTHORITY["EPSG","4978"]]`
	r := &Resolver{}
	got := r.Resolve(geocentric)
	if got.Source != SourceDefaultFallback {
		t.Errorf("Source = %v, want %v", got.Source, SourceDefaultFallback)
	}
}

func TestSourceString(t *testing.T) {
	tests := []struct {
		source Source
		want   string
	}{
		{SourceAuthority, "authority"},
		{SourceLocalWKT, "local-wkt"},
		{SourceDefinitionScan, "definition-scan"},
		{SourceForcedProj4, "forced-proj4"},
		{SourceDefaultFallback, "default-fallback"},
		{Source(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("Source(%d).String() = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func writeDefs(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteTempFile(t, "epsg", content)
}
