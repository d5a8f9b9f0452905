package srs

import (
	"strings"
)

// reference is the parsed form of a native projection description.
type reference struct {
	local      bool
	geographic bool

	// authority name and code of the classified category node, when present.
	authorityName string
	authorityCode string

	// wkt is the trimmed WKT text for WKT inputs.
	wkt string

	// proj4Tokens holds the normalized +key=value tokens for PROJ.4 inputs.
	proj4Tokens []string
}

// exportProj4 renders the canonical PROJ.4 string. Only references parsed
// from PROJ.4 can be re-exported; WKT references yield "" and the caller
// degrades to the default SRID.
func (r *reference) exportProj4() string {
	return strings.Join(r.proj4Tokens, " ")
}

// geographicProjections are the PROJ.4 projection names describing
// unprojected longitude/latitude systems.
var geographicProjections = map[string]bool{
	"longlat": true,
	"latlong": true,
	"lonlat":  true,
	"latlon":  true,
}

// parse interprets a native projection description. ok is false when the
// input is neither a PROJ.4 definition nor well-formed WKT.
func parse(native string) (ref *reference, ok bool) {
	s := strings.TrimSpace(native)
	if s == "" {
		return nil, false
	}
	if strings.HasPrefix(s, "+") {
		return parseProj4(s)
	}
	return parseWKT(s)
}

func parseProj4(s string) (*reference, bool) {
	ref := &reference{}
	var proj string
	for _, field := range strings.Fields(s) {
		if !strings.HasPrefix(field, "+") {
			return nil, false
		}
		key, value, _ := strings.Cut(field[1:], "=")
		if key == "" {
			return nil, false
		}
		switch key {
		case "proj":
			proj = value
		case "init":
			// +init=epsg:NNNN carries the authority directly.
			if auth, code, found := strings.Cut(value, ":"); found && code != "" {
				ref.authorityName = strings.ToUpper(auth)
				ref.authorityCode = code
			}
		}
		ref.proj4Tokens = append(ref.proj4Tokens, field)
	}
	if proj == "" && ref.authorityCode == "" {
		return nil, false
	}
	ref.geographic = geographicProjections[proj]
	return ref, true
}

func parseWKT(s string) (*reference, bool) {
	root, rest, ok := parseWKTNode(s)
	if !ok || strings.TrimSpace(rest) != "" {
		return nil, false
	}

	ref := &reference{wkt: s}
	switch root.keyword {
	case "LOCAL_CS":
		ref.local = true
		return ref, true
	case "GEOGCS":
		ref.geographic = true
	case "PROJCS", "GEOCCS":
		ref.geographic = false
	default:
		return nil, false
	}

	// The authority lookup category follows the classification: GEOGCS for
	// geographic references, PROJCS otherwise. Only a root node of the
	// category's kind carries a usable annotation; a geocentric root has
	// none and falls through to the degraded paths.
	category := "PROJCS"
	if ref.geographic {
		category = "GEOGCS"
	}
	if root.keyword == category {
		if name, code, found := root.authority(); found {
			ref.authorityName = name
			ref.authorityCode = code
		}
	}
	return ref, true
}

// wktNode is one KEYWORD[arg, arg, ...] element of a WKT document.
type wktNode struct {
	keyword  string
	strings  []string  // quoted string arguments, in order
	children []wktNode // nested node arguments, in order
}

// authority returns the name and code of a direct AUTHORITY child.
func (n *wktNode) authority() (name, code string, found bool) {
	for _, c := range n.children {
		if c.keyword == "AUTHORITY" && len(c.strings) >= 2 {
			return c.strings[0], c.strings[1], true
		}
	}
	return "", "", false
}

// parseWKTNode consumes one node from the front of s and returns the
// remaining text.
func parseWKTNode(s string) (node wktNode, rest string, ok bool) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	if open <= 0 {
		return wktNode{}, "", false
	}
	keyword := strings.TrimSpace(s[:open])
	if keyword == "" || strings.ContainsAny(keyword, "]\",") {
		return wktNode{}, "", false
	}
	node.keyword = strings.ToUpper(keyword)

	s = s[open+1:]
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			return wktNode{}, "", false
		}
		switch s[0] {
		case ']':
			return node, s[1:], true
		case ',':
			s = s[1:]
		case '"':
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return wktNode{}, "", false
			}
			node.strings = append(node.strings, s[1:1+end])
			s = s[end+2:]
		default:
			// Either a nested node or a bare number/enum token.
			next := strings.IndexAny(s, "[],")
			if next < 0 {
				return wktNode{}, "", false
			}
			if s[next] == '[' {
				child, rest, ok := parseWKTNode(s)
				if !ok {
					return wktNode{}, "", false
				}
				node.children = append(node.children, child)
				s = rest
			} else {
				// Bare token (number or axis direction); skip it.
				s = s[next:]
			}
		}
	}
}
