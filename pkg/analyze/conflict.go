package analyze

import (
	"fmt"
	"slices"
	"strings"
)

// Kind classifies a conflict.
type Kind string

const (
	// KindVersion marks two or more versions of the same base package.
	KindVersion Kind = "version_conflict"
	// KindArchitecture marks packages built for different architectures.
	KindArchitecture Kind = "architecture_conflict"
	// KindLicense marks copyleft and proprietary licenses in one set.
	KindLicense Kind = "license_conflict"
	// KindSemantic marks a declared conflicts_with edge.
	KindSemantic Kind = "semantic_conflict"
	// KindCycle marks a dependency cycle.
	KindCycle Kind = "dependency_cycle"
)

// Kinds lists every conflict kind in detection order.
var Kinds = []Kind{KindVersion, KindArchitecture, KindLicense, KindSemantic, KindCycle}

// Severity ranks how badly a conflict breaks a configuration.
type Severity string

// Severities, from least to most costly.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Resolution is the suggested way to settle a conflict.
type Resolution string

// Suggested resolutions, one per conflict kind.
const (
	ResolveVersionNegotiation    Resolution = "version_negotiation"
	ResolveArchitectureIsolation Resolution = "architecture_isolation"
	ResolveLicenseMitigation     Resolution = "license_mitigation"
	ResolveSemanticNegotiation   Resolution = "semantic_negotiation"
	ResolveCycleBreaking         Resolution = "cycle_breaking"
)

// Conflict is one detected incompatibility among packages of a graph.
type Conflict struct {
	Kind       Kind       `json:"kind"`
	Entities   []string   `json:"entities"`
	Severity   Severity   `json:"severity"`
	Resolution Resolution `json:"suggested_resolution"`
	// Values holds the offending values when they are not package names,
	// such as the architectures or licenses involved.
	Values []string `json:"values,omitempty"`
}

func newConflict(kind Kind, sev Severity, res Resolution, entities []string) Conflict {
	e := slices.Clone(entities)
	slices.Sort(e)
	return Conflict{Kind: kind, Entities: slices.Compact(e), Severity: sev, Resolution: res}
}

// Key identifies a conflict by kind and entity set, ignoring order.
func (c Conflict) Key() string {
	e := slices.Clone(c.Entities)
	slices.Sort(e)
	return string(c.Kind) + ":" + strings.Join(e, ",")
}

// Involves reports whether id is one of the conflict's entities.
func (c Conflict) Involves(id string) bool {
	return slices.Contains(c.Entities, id)
}

// String renders the conflict as "kind[severity] a, b".
func (c Conflict) String() string {
	return fmt.Sprintf("%s[%s] %s", c.Kind, c.Severity, strings.Join(c.Entities, ", "))
}

// =============================================================================
// Enum validation
// =============================================================================

// Valid reports whether k is one of [Kinds].
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// UnmarshalText rejects unknown kinds.
func (k *Kind) UnmarshalText(b []byte) error {
	v := Kind(b)
	if !v.Valid() {
		return fmt.Errorf("unknown conflict kind %q", string(b))
	}
	*k = v
	return nil
}

// Valid reports whether s is low, medium or high.
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// UnmarshalText rejects unknown severities.
func (s *Severity) UnmarshalText(b []byte) error {
	v := Severity(b)
	if !v.Valid() {
		return fmt.Errorf("unknown severity %q", string(b))
	}
	*s = v
	return nil
}

// Valid reports whether r is one of the known resolutions.
func (r Resolution) Valid() bool {
	switch r {
	case ResolveVersionNegotiation, ResolveArchitectureIsolation, ResolveLicenseMitigation,
		ResolveSemanticNegotiation, ResolveCycleBreaking:
		return true
	}
	return false
}

// UnmarshalText rejects unknown resolutions.
func (r *Resolution) UnmarshalText(b []byte) error {
	v := Resolution(b)
	if !v.Valid() {
		return fmt.Errorf("unknown resolution %q", string(b))
	}
	*r = v
	return nil
}
