package gitsource

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// commitHashPattern matches full or abbreviated commit hashes.
var commitHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

// IsReleaseTag reports whether a revision string names a release tag
// rather than a branch or commit: an optional leading "v" followed by a
// dotted numeric version, such as "v2015.8.9" or "3006.1". Only these
// are worth a shallow clone; branch names and commit hashes need
// history.
func IsReleaseTag(rev string) bool {
	if !strings.Contains(rev, ".") {
		return false
	}
	_, err := semver.NewVersion(rev)
	return err == nil
}

// IsCommitHash reports whether a revision string looks like a commit
// hash. Ambiguous strings (a branch literally named "deadbeef") resolve
// through the repository, not through this check.
func IsCommitHash(rev string) bool {
	return commitHashPattern.MatchString(rev)
}

// SupportsShallow reports whether the transport behind a repository URL
// supports shallow fetches. Local transports are excluded; a shallow
// fetch through the file transport is not reliable, and a local clone
// is cheap anyway.
func SupportsShallow(rawURL string) bool {
	if strings.HasPrefix(rawURL, "git@") {
		// scp-like SSH syntax has no scheme but rides the SSH transport
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "git", "ssh":
		return true
	default:
		return false
	}
}
