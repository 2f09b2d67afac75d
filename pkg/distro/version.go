package distro

import (
	"regexp"
	"strconv"
)

// versionPattern extracts the leading MAJOR.MINOR pair from free-form
// version text. Components are captured as raw digit runs so leading
// zeros survive ("20.04" keeps "04").
var versionPattern = regexp.MustCompile(`([0-9]+)(?:\.([0-9]+))?`)

// Version is a parsed MAJOR.MINOR pair. An empty component means the
// information was absent, which is distinct from zero. Components stay
// in textual form because handler names embed them verbatim.
type Version struct {
	Major string
	Minor string
}

// ParseVersion extracts a two-component version from free-form text.
// The first digit run becomes the major component, a dot-joined second
// run becomes the minor, and anything after that is ignored. Text
// without digits yields an empty Version, never a zero one. Parsing is
// idempotent: ParseVersion(v.String()) == v.
func ParseVersion(s string) Version {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}
	}
	return Version{Major: m[1], Minor: m[2]}
}

// String renders the version as "MAJOR.MINOR", "MAJOR", or "".
func (v Version) String() string {
	if v.Major == "" {
		return ""
	}
	if v.Minor == "" {
		return v.Major
	}
	return v.Major + "." + v.Minor
}

// IsZero reports whether no version information is present.
func (v Version) IsZero() bool {
	return v.Major == ""
}

// MajorNum returns the major component as an integer, with false when
// the component is absent.
func (v Version) MajorNum() (int, bool) {
	return componentNum(v.Major)
}

// MinorNum returns the minor component as an integer, with false when
// the component is absent.
func (v Version) MinorNum() (int, bool) {
	return componentNum(v.Minor)
}

func componentNum(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
