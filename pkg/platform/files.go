package platform

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// osReleaseLine matches one KEY=value line of an os-release file.
// Values may be wrapped in single or double quotes.
var osReleaseLine = regexp.MustCompile(`^(\w+)=(?:'|")?(.*?)(?:'|")?$`)

// osReleaseEscape undoes the backslash escaping os-release applies to
// shell special characters inside quoted values.
var osReleaseEscape = regexp.MustCompile("\\\\([$\"'\\\\`])")

// lsbLine matches the DISTRIB_* assignments of /etc/lsb-release.
var lsbLine = regexp.MustCompile(`^(DISTRIB_(?:ID|RELEASE|CODENAME|DESCRIPTION))=(?:'|")?([\w\s.\-_]+?)(?:'|")?$`)

// ParseOSRelease reads KEY=value pairs in os-release format.
func ParseOSRelease(r io.Reader) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := osReleaseLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out[m[1]] = osReleaseEscape.ReplaceAllString(m[2], "$1")
	}
	return out
}

// ReadOSRelease loads the structured release metadata, preferring
// /etc/os-release over the /usr/lib fallback location.
func ReadOSRelease(root string) (map[string]string, bool) {
	for _, rel := range []string{"etc/os-release", "usr/lib/os-release"} {
		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		kv := ParseOSRelease(f)
		f.Close()
		if len(kv) > 0 {
			return kv, true
		}
	}
	return nil, false
}

// ReadLSBRelease loads the DISTRIB_* assignments from
// /etc/lsb-release when the file exists.
func ReadLSBRelease(root string) (map[string]string, bool) {
	data, err := os.ReadFile(filepath.Join(root, "etc/lsb-release"))
	if err != nil {
		return nil, false
	}
	out := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		m := lsbLine.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			out[m[1]] = m[2]
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// knownReleaseFile matches the marker file names belonging to known
// distributions. Anything else found by the glob is probed last.
var knownReleaseFile = regexp.MustCompile(`(?i)^(arch|alpine|centos|debian|ubuntu|fedora|redhat|oracle|suse|sl|mandrake|mandriva|gentoo|slackware|turbolinux|unitedlinux|void|system|lsb|os)[-_](release|version)$`)

// firstReleaseFiles are probed before the other known markers, in this
// order. On hosts carrying several markers (a CentOS box also has an
// os-release and often an lsb-release) the vendor-specific file is the
// authoritative one.
var firstReleaseFiles = []string{
	"redhat-release",
	"centos-release",
	"oracle-release",
	"fedora-release",
}

// lastReleaseFiles are probed after everything else known.
var lastReleaseFiles = []string{"lsb-release"}

// ReleaseFiles lists the marker files present under root's /etc,
// de-duplicated and ordered by SortReleaseFiles.
func ReleaseFiles(root string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, pattern := range []string{"etc/*-release", "etc/*_release", "etc/*-version", "etc/*_version"} {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			name := filepath.Base(m)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return SortReleaseFiles(names)
}

// SortReleaseFiles orders marker file names by probe priority: the
// firstReleaseFiles entries in their listed order, then the remaining
// known markers, then lastReleaseFiles, then unknown names. Ties are
// broken lexicographically so the order never depends on filesystem
// enumeration.
func SortReleaseFiles(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	sort.SliceStable(out, func(i, j int) bool {
		return releaseFileRank(out[i]) < releaseFileRank(out[j])
	})
	return out
}

func releaseFileRank(name string) int {
	for i, first := range firstReleaseFiles {
		if name == first {
			return i
		}
	}
	for _, last := range lastReleaseFiles {
		if name == last {
			return 200
		}
	}
	if knownReleaseFile.MatchString(name) {
		return 100
	}
	return 300
}

// releaseContentLine matches the "<Name> release <version>" and
// "<Name> version <version>" content shapes of the classic one-line
// marker files.
var releaseContentLine = regexp.MustCompile(`^(.*?)\s+(?:release|version)\s+(\S+)`)

// contentNamedMarkers are the marker files whose filename stem is too
// generic to name the distribution; for these the content line is the
// better source ("CentOS Linux release 7.9.2009 (Core)" inside
// redhat-release on a CentOS host).
var contentNamedMarkers = map[string]bool{
	"redhat-release": true,
	"system-release": true,
	"oracle-release": true,
	"sl-release":     true,
}

// ReadReleaseFile reads one marker file and extracts a distribution
// name and raw version text. The name usually comes from the filename
// stem ("centos-release" names centos); for the generic stems the
// content line wins. ok is false when the file is unreadable or empty.
func ReadReleaseFile(root, name string) (distroName, versionText string, ok bool) {
	data, err := os.ReadFile(filepath.Join(root, "etc", name))
	if err != nil {
		return "", "", false
	}

	var line string
	for _, l := range strings.Split(string(data), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if line == "" {
		return "", "", false
	}

	stem := strings.TrimSuffix(name, "-release")
	stem = strings.TrimSuffix(stem, "_release")
	stem = strings.TrimSuffix(stem, "-version")
	stem = strings.TrimSuffix(stem, "_version")

	if m := releaseContentLine.FindStringSubmatch(line); m != nil {
		if contentNamedMarkers[name] {
			return strings.TrimSpace(m[1]), m[2], true
		}
		return stem, m[2], true
	}
	return stem, line, true
}
