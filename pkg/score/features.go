package score

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/stacksolve/pkg/graph"
)

// Dimensions is the length of every feature vector.
const Dimensions = 16

// Feature indices.
const (
	FeatNameLength = iota
	FeatNameHash
	FeatSeparators
	FeatVersionParts
	FeatMajorVersion
	FeatDependencyCount
	FeatMetadataEntries
	FeatHasAuthor
	FeatHasLicense
	FeatAppTypeWeb
	FeatAppTypeDatabase
	FeatAppTypeAI
	FeatAppTypeGeneral
	FeatAppTypeMicroservice
)

// ApplicationTypes lists the one-hot application types in vector order.
var ApplicationTypes = []string{"web", "database", "ai", "general", "microservice"}

// DefaultApplicationType is assumed when a package declares none.
const DefaultApplicationType = "general"

// Extract returns the feature vector of p. It never mutates p.
func Extract(p *graph.Package) []float64 {
	v := make([]float64, Dimensions)
	if p == nil {
		return v
	}

	v[FeatNameLength] = float64(len(p.Name))
	v[FeatNameHash] = nameHash(p.Name)
	v[FeatSeparators] = float64(strings.Count(p.Name, "-") + strings.Count(p.Name, "_"))
	v[FeatVersionParts] = float64(versionParts(p.Version))
	v[FeatMajorVersion] = float64(MajorVersion(p.Version))
	v[FeatDependencyCount] = float64(p.DependencyCount)
	v[FeatMetadataEntries] = float64(len(p.Metadata))
	if hasValue(p.Metadata, "author") {
		v[FeatHasAuthor] = 1
	}
	if p.License != "" || hasValue(p.Metadata, "license") {
		v[FeatHasLicense] = 1
	}

	appType := strings.ToLower(strings.TrimSpace(p.ApplicationType))
	if appType == "" {
		appType = DefaultApplicationType
	}
	for i, t := range ApplicationTypes {
		if t == appType {
			v[FeatAppTypeWeb+i] = 1
		}
	}
	return v
}

// MajorVersion returns the numeric major component of version, or 0 when it
// has none. Strict semver is tried first; otherwise the leading digits
// (after an optional "v") are used.
func MajorVersion(version string) uint64 {
	version = strings.TrimSpace(version)
	if version == "" {
		return 0
	}
	if sv, err := semver.NewVersion(version); err == nil {
		return sv.Major()
	}
	s := strings.TrimPrefix(strings.TrimPrefix(version, "v"), "V")
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func nameHash(name string) float64 {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return float64(sum%1000) / 1000
}

func versionParts(version string) int {
	version = strings.TrimSpace(version)
	if version == "" {
		return 0
	}
	// Pre-release and build suffixes are not components.
	if i := strings.IndexAny(version, "-+"); i >= 0 {
		version = version[:i]
	}
	return len(strings.Split(version, "."))
}

func hasValue(m graph.Metadata, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}
