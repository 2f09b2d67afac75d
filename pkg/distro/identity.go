// Package distro resolves the host's raw platform signals into the
// canonical distribution identity that drives handler dispatch:
// version parsing, name normalization, derivative-to-base translation,
// and codename lookup.
package distro

import "strings"

// Identity is the canonical description of the host used for all
// dispatch decisions. It is built once by Resolve and never modified
// afterwards; derivative translation happens inside Resolve before the
// value escapes.
type Identity struct {
	// Kernel is the lowercase kernel family, e.g. "linux" or "freebsd".
	Kernel string

	// Name is the distribution display name, e.g. "Ubuntu".
	Name string

	// ID is the normalized form embedded in handler names: lowercase
	// with non-alphanumeric runs collapsed to underscores, e.g.
	// "ubuntu" or "elementary_os".
	ID string

	// Version is the parsed distribution version. Both components are
	// empty for rolling releases.
	Version Version

	// Codename is the release codename where one is known ("focal"),
	// or the SUSE service pack level ("sp4"). Empty otherwise.
	Codename string
}

// String renders the identity in "name major.minor" form for logs.
func (id Identity) String() string {
	if v := id.Version.String(); v != "" {
		return id.ID + " " + v
	}
	return id.ID
}

// namePrefixes maps the start of a vendor name string to the
// normalized distribution id, for vendors whose NAME strings are long
// or vary between metadata sources. Matched against the lowercased
// name before the generic normalization rules apply. Longer prefixes
// must come before shorter ones that share a stem.
var namePrefixes = []struct{ prefix, id string }{
	{"red hat enterprise", "redhat"},
	{"redhat enterprise", "redhat"},
	{"suse linux enterprise", "sles"},
	{"sles", "sles"},
	{"opensuse", "opensuse"},
	{"oracle linux", "oracle"},
	{"oracle america", "oracle"},
	{"amazon linux", "amazon"},
	{"amazon ami", "amazon"},
	{"almalinux", "almalinux"},
	{"alma", "almalinux"},
	{"rocky", "rocky"},
	{"arch linux", "arch"},
	{"manjaro", "manjaro"},
	{"debian gnu", "debian"},
	{"devuan", "devuan"},
	{"pop!_os", "pop"},
	{"elementary os", "elementary_os"},
	{"elementary", "elementary"},
	{"linux mint", "linuxmint"},
	{"kde neon", "neon"},
	{"scientific linux", "scientific"},
	{"centos", "centos"},
	{"cloudlinux", "cloudlinux"},
	{"vmware photon", "photon"},
	{"kali gnu", "kali"},
	{"raspbian gnu", "raspbian"},
	{"bunsenlabs", "bunsenlabs"},
	{"turnkey", "turnkey"},
	{"cumulus", "cumulus"},
	{"fedora", "fedora"},
	{"alpine linux", "alpine"},
	{"void linux", "void"},
	{"gentoo", "gentoo"},
	{"ubuntu", "ubuntu"},
}

// NormalizeName converts a distribution display name into the id form
// used in handler names.
func NormalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, p := range namePrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.id
		}
	}

	var b strings.Builder
	pending := false
	for _, r := range lower {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
