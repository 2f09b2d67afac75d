package dispatch

import (
	"strings"

	"github.com/saltboot/saltboot/pkg/distro"
)

// Candidates synthesizes the ordered handler names to probe for one
// phase, most specific first. Pure function: no I/O, no side effects.
//
// The maximal identifier embeds the full identity and the install
// mode; the remaining tiers drop, in this exact order: the mode while
// keeping the minor version, the minor while restoring the mode, both
// minor and mode, the major while keeping the mode, and finally both
// major and mode. The phase default, where one exists, is appended
// last. Empty version components collapse tiers into identical names,
// which the stable de-duplication reduces to their first occurrence,
// so an unversioned identity never produces a malformed name.
func Candidates(phase Phase, id distro.Identity, mode Mode) []string {
	t := templates[phase]
	d := id.ID
	major := id.Version.Major
	minor := id.Version.Minor
	m := string(mode.Channel)

	names := make([]string, 0, 7)
	add := func(parts ...string) {
		segs := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				segs = append(segs, p)
			}
		}
		names = append(names, t.prefix+strings.Join(segs, "_")+t.suffix)
	}

	add(d, major, minor, m)
	add(d, major, minor)
	add(d, major, m)
	add(d, major)
	add(d, m)
	add(d)
	if t.fallback != "" {
		names = append(names, t.fallback)
	}
	return dedupe(names)
}

// dedupe removes repeated names preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
