// Package bump computes the next semantic version from a range of commit
// subjects. Tag parsing and version ordering are delegated to the semver
// library; this package owns the conventional-commit scan that picks which
// component to increment.
package bump

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind identifies which semantic version component a release increments.
// Kinds are totally ordered: Major > Minor > Patch.
type Kind int

const (
	// Patch is the default when no commit carries a stronger signal.
	Patch Kind = iota
	// Minor is selected when at least one feat commit exists.
	Minor
	// Major is selected when any commit carries a breaking-change marker.
	Major
)

// String returns the lowercase name of the bump kind.
func (k Kind) String() string {
	switch k {
	case Major:
		return "major"
	case Minor:
		return "minor"
	default:
		return "patch"
	}
}

// ErrInvalidBaseVersion indicates the latest tag did not parse as a strict
// v<major>.<minor>.<patch> version.
type ErrInvalidBaseVersion struct {
	Tag string
	Err error
}

func (e *ErrInvalidBaseVersion) Error() string {
	return fmt.Sprintf("invalid base version tag %q: %v", e.Tag, e.Err)
}

func (e *ErrInvalidBaseVersion) Unwrap() error { return e.Err }

// tagPattern enforces strictly dot-separated non-negative integers after the
// prefix. semver.StrictNewVersion alone would admit prerelease and build
// suffixes, which release tags never carry here.
var tagPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ParseTag parses a release tag of the form <prefix><major>.<minor>.<patch>.
// It returns ErrInvalidBaseVersion if the prefix is missing or any component
// is not a non-negative integer.
func ParseTag(tag, prefix string) (*semver.Version, error) {
	bare, ok := strings.CutPrefix(tag, prefix)
	if !ok {
		return nil, &ErrInvalidBaseVersion{Tag: tag, Err: fmt.Errorf("missing %q prefix", prefix)}
	}
	if !tagPattern.MatchString(bare) {
		return nil, &ErrInvalidBaseVersion{Tag: tag, Err: fmt.Errorf("not a <major>.<minor>.<patch> version")}
	}
	v, err := semver.StrictNewVersion(bare)
	if err != nil {
		return nil, &ErrInvalidBaseVersion{Tag: tag, Err: err}
	}
	return v, nil
}

// FormatTag renders a version back into its tag form.
func FormatTag(v *semver.Version, prefix string) string {
	return fmt.Sprintf("%s%d.%d.%d", prefix, v.Major(), v.Minor(), v.Patch())
}

// breakingMarker is the literal footer token. Only the subject line is
// scanned: commit bodies are not available to this pass, so a footer placed
// in the body is missed. This mirrors the historical behavior on purpose;
// widening the match would change version outcomes for existing histories.
const breakingMarker = "BREAKING CHANGE"

var (
	// bangPrefix matches a conventional-commit prefix whose exclamation mark
	// flags a breaking change, e.g. "feat!:" or "fix(api)!:".
	bangPrefix = regexp.MustCompile(`^[a-zA-Z]+(\([^)]*\))?!:`)
	// featPrefix matches a feat commit with an optional scope.
	featPrefix = regexp.MustCompile(`^feat(\([^)]*\))?!?: `)
)

// Resolve scans commit subjects in traversal order and returns the bump kind
// for the release. A breaking-change marker decides Major immediately; a feat
// commit raises the floor to Minor but the scan continues, since a breaking
// change later in the range must still win. With no signal the result is
// Patch.
func Resolve(subjects []string) Kind {
	kind := Patch
	for _, subject := range subjects {
		if isBreaking(subject) {
			return Major
		}
		if featPrefix.MatchString(subject) {
			kind = Minor
		}
	}
	return kind
}

func isBreaking(subject string) bool {
	return bangPrefix.MatchString(subject) || strings.Contains(subject, breakingMarker)
}

// Next computes the version that follows base for the given bump kind:
// Major -> (M+1,0,0), Minor -> (M,N+1,0), Patch -> (M,N,P+1).
func Next(base *semver.Version, kind Kind) *semver.Version {
	var next semver.Version
	switch kind {
	case Major:
		next = base.IncMajor()
	case Minor:
		next = base.IncMinor()
	default:
		next = base.IncPatch()
	}
	return &next
}
