package distro

import "strconv"

// ubuntuCodenames is keyed by the full "major.minor" version since
// Ubuntu ships two releases a year.
var ubuntuCodenames = map[string]string{
	"12.04": "precise",
	"14.04": "trusty",
	"16.04": "xenial",
	"18.04": "bionic",
	"20.04": "focal",
	"22.04": "jammy",
	"24.04": "noble",
}

// debianCodenames is keyed by major version only.
var debianCodenames = map[string]string{
	"7":  "wheezy",
	"8":  "jessie",
	"9":  "stretch",
	"10": "buster",
	"11": "bullseye",
	"12": "bookworm",
	"13": "trixie",
}

// CodenameFor returns the release codename for distributions that have
// one, or the service pack level for the SUSE flavours. Versions
// missing from the tables return the empty string, which downstream
// consumers treat as "no codename".
func CodenameFor(id string, v Version) string {
	switch id {
	case "ubuntu":
		return ubuntuCodenames[v.String()]
	case "debian":
		return debianCodenames[v.Major]
	case "sles", "opensuse":
		return PatchLevel(v)
	}
	return ""
}

// PatchLevel renders the SUSE service pack suffix for a version. Minor
// zero or absent is the initial release, which has no suffix.
func PatchLevel(v Version) string {
	n, ok := v.MinorNum()
	if !ok || n == 0 {
		return ""
	}
	return "sp" + strconv.Itoa(n)
}
