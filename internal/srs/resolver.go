// Package srs resolves a native projection description (PROJ.4 or WKT)
// into a canonical SRID.
//
// Resolution is a pure function of the input string plus an optional static
// EPSG definitions file. It never fails: inputs that cannot be resolved
// yield the default SRID with a Source that names the degraded path, so
// callers can observe that a default occurred.
package srs

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// DefaultSRID is returned when resolution cannot find an authoritative code.
const DefaultSRID = "4326"

// Source names the path a resolution took.
type Source int

const (
	// SourceAuthority means the reference carried an authority name and
	// code; the code was returned directly.
	SourceAuthority Source = iota
	// SourceLocalWKT means the reference is a local coordinate system; its
	// WKT form was returned verbatim because no EPSG code can exist.
	SourceLocalWKT
	// SourceDefinitionScan means the code came from a line of the EPSG
	// definitions file matching the reference's canonical PROJ.4 string.
	SourceDefinitionScan
	// SourceForcedProj4 means the caller asked for the raw PROJ.4 string
	// instead of a definitions-file scan.
	SourceForcedProj4
	// SourceDefaultFallback means resolution degraded to the default SRID.
	SourceDefaultFallback
)

func (s Source) String() string {
	switch s {
	case SourceAuthority:
		return "authority"
	case SourceLocalWKT:
		return "local-wkt"
	case SourceDefinitionScan:
		return "definition-scan"
	case SourceForcedProj4:
		return "forced-proj4"
	case SourceDefaultFallback:
		return "default-fallback"
	}
	return "unknown"
}

// Resolution is the outcome of resolving a native projection string.
type Resolution struct {
	// SRID is a bare numeric EPSG code, or a raw WKT/PROJ string for local
	// and forced-proj4 outcomes.
	SRID   string
	Source Source
}

// Degraded reports whether the resolution fell back to the default SRID.
func (r Resolution) Degraded() bool { return r.Source == SourceDefaultFallback }

// Resolver resolves projection strings. The zero value uses the default
// definitions path and the scan strategy.
type Resolver struct {
	// DefinitionsPath is the proj.4 EPSG file scanned when a reference has
	// no authority metadata. Empty means no scan is possible.
	DefinitionsPath string

	// ForceProj4 returns the canonical PROJ.4 string instead of scanning
	// the definitions file.
	ForceProj4 bool
}

// codePattern extracts the angle-bracket-delimited code of an EPSG
// definitions line, e.g. `<2154> +proj=lcc ... <>`.
var codePattern = regexp.MustCompile(`<(\d+)>`)

// Resolve turns a native projection description into an SRID.
func (r *Resolver) Resolve(native string) Resolution {
	ref, ok := parse(native)
	if !ok {
		return Resolution{SRID: DefaultSRID, Source: SourceDefaultFallback}
	}

	// A local system has no EPSG code by definition; its WKT is the
	// identifier.
	if ref.local {
		return Resolution{SRID: ref.wkt, Source: SourceLocalWKT}
	}

	// Fast path: the authority annotation for the classified category.
	if ref.authorityName != "" && ref.authorityCode != "" {
		return Resolution{SRID: ref.authorityCode, Source: SourceAuthority}
	}

	proj4 := ref.exportProj4()
	if proj4 == "" {
		return Resolution{SRID: DefaultSRID, Source: SourceDefaultFallback}
	}
	if r.ForceProj4 {
		return Resolution{SRID: proj4, Source: SourceForcedProj4}
	}

	if code := r.scanDefinitions(proj4); code != "" {
		return Resolution{SRID: code, Source: SourceDefinitionScan}
	}
	return Resolution{SRID: DefaultSRID, Source: SourceDefaultFallback}
}

// scanDefinitions linearly scans the EPSG definitions file for a line
// containing the exact canonical PROJ.4 string. First match wins; duplicate
// definitions are not disambiguated.
func (r *Resolver) scanDefinitions(proj4 string) string {
	if r.DefinitionsPath == "" {
		return ""
	}
	f, err := os.Open(r.DefinitionsPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, proj4) {
			continue
		}
		if m := codePattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
