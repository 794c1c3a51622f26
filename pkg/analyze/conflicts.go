package analyze

import (
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/stacksolve/pkg/graph"
	"github.com/matzehuels/stacksolve/pkg/score"
)

// versionSuffix splits "libx-1.2.0" into base name "libx" and version "1.2.0".
var versionSuffix = regexp.MustCompile(`^(.+?)-v?(\d+(?:\.\d+)*(?:[-+][0-9A-Za-z.-]+)?)$`)

var (
	copyleftMarkers    = []string{"gpl"} // also matches agpl and lgpl
	proprietaryMarkers = []string{"proprietary", "commercial"}
)

// DetectConflicts runs the version, architecture, license and semantic
// passes over g and returns their findings in that order. Each pass only
// looks at set properties of the graph, so the result does not depend on
// the order packages were requested in.
func DetectConflicts(g *graph.Graph) []Conflict {
	var out []Conflict
	out = append(out, versionConflicts(g)...)
	out = append(out, architectureConflicts(g)...)
	out = append(out, licenseConflicts(g)...)
	out = append(out, semanticConflicts(g)...)
	return out
}

// SplitVersion separates a trailing "-<version>" suffix from a package name.
// ok is false when the name carries no such suffix.
func SplitVersion(name string) (base, version string, ok bool) {
	m := versionSuffix.FindStringSubmatch(name)
	if m == nil {
		return name, "", false
	}
	return m[1], m[2], true
}

func versionConflicts(g *graph.Graph) []Conflict {
	type member struct {
		id    string
		major uint64
	}
	groups := make(map[string][]member)
	for _, p := range g.Packages() {
		base, v, ok := SplitVersion(p.Name)
		if !ok {
			v = p.Version
		}
		groups[base] = append(groups[base], member{id: p.Name, major: score.MajorVersion(v)})
	}

	bases := make([]string, 0, len(groups))
	for b, ms := range groups {
		if len(ms) >= 2 {
			bases = append(bases, b)
		}
	}
	slices.Sort(bases)

	var out []Conflict
	for _, b := range bases {
		ms := groups[b]
		majors := make(map[uint64]bool)
		ids := make([]string, len(ms))
		for i, m := range ms {
			majors[m.major] = true
			ids[i] = m.id
		}
		if len(majors) > 1 {
			out = append(out, newConflict(KindVersion, SeverityHigh, ResolveVersionNegotiation, ids))
		}
	}
	return out
}

func architectureConflicts(g *graph.Graph) []Conflict {
	archs := make(map[string]bool)
	var ids []string
	for _, p := range g.Packages() {
		// Unresolved placeholders carry no architecture.
		a := strings.ToLower(strings.TrimSpace(p.Architecture))
		if a == "" {
			continue
		}
		archs[a] = true
		ids = append(ids, p.Name)
	}
	if len(archs) < 2 {
		return nil
	}
	c := newConflict(KindArchitecture, SeverityMedium, ResolveArchitectureIsolation, ids)
	c.Values = sortedKeys(archs)
	return []Conflict{c}
}

func licenseConflicts(g *graph.Graph) []Conflict {
	var copyleft, proprietary []string
	licenses := make(map[string]bool)
	for _, p := range g.Packages() {
		l := strings.ToLower(p.License)
		switch {
		case containsAny(l, copyleftMarkers):
			copyleft = append(copyleft, p.Name)
		case containsAny(l, proprietaryMarkers):
			proprietary = append(proprietary, p.Name)
		default:
			continue
		}
		licenses[p.License] = true
	}
	if len(copyleft) == 0 || len(proprietary) == 0 {
		return nil
	}
	c := newConflict(KindLicense, SeverityHigh, ResolveLicenseMitigation, append(copyleft, proprietary...))
	c.Values = sortedKeys(licenses)
	return []Conflict{c}
}

func semanticConflicts(g *graph.Graph) []Conflict {
	var out []Conflict
	for _, e := range g.EdgesOf(graph.ConflictsWith) {
		out = append(out, newConflict(KindSemantic, SeverityMedium, ResolveSemanticNegotiation, []string{e.From, e.To}))
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
