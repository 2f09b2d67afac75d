package distro

// Derivative distributions pretend to be their upstream base for
// dispatch purposes: a Linux Mint 21 host installs the Ubuntu 22.04
// packages. The tables are keyed by (normalized id, major version) and
// map to the base distribution's version string.

var ubuntuBase = map[string]map[string]string{
	"elementary":    {"5": "18.04", "6": "20.04", "7": "22.04", "8": "24.04"},
	"elementary_os": {"02": "12.04"},
	"linaro":        {"12": "12.04"},
	"linuxmint":     {"13": "12.04", "17": "14.04", "18": "16.04", "19": "18.04", "20": "20.04", "21": "22.04", "22": "24.04"},
	"neon":          {"16": "16.04", "18": "18.04", "20": "20.04", "22": "22.04", "24": "24.04"},
	"pop":           {"20": "20.04", "22": "22.04", "24": "24.04"},
	"trisquel":      {"6": "12.04", "7": "14.04", "8": "16.04", "9": "18.04", "10": "20.04", "11": "22.04"},
}

var debianBase = map[string]map[string]string{
	"bunsenlabs": {"9": "9.0", "10": "10.0", "11": "11.0"},
	"cumulus":    {"2": "7.0", "3": "8.0", "4": "10.0", "5": "12.0"},
	"devuan":     {"1": "8.0", "2": "9.0", "3": "10.0", "4": "11.0", "5": "12.0"},
	"kali":       {"1": "7.0", "2021": "10.0", "2022": "11.0", "2023": "12.0", "2024": "12.0"},
	"linuxmint":  {"1": "8.0", "2": "9.0", "3": "10.0", "4": "10.0", "5": "11.0", "6": "12.0"},
	"raspbian":   {"8": "8.0", "9": "9.0", "10": "10.0", "11": "11.0", "12": "12.0"},
	"turnkey":    {"9": "9.0", "10": "10.0", "11": "11.0"},
}

// Translate maps a derivative identity onto its upstream base
// distribution, returning a new value. Identities that are not known
// derivatives come back unchanged. The output of a translation is
// never itself a table key, so Translate(Translate(id)) ==
// Translate(id) holds for every input.
//
// Linux Mint appears in both tables: the Debian edition carries major
// versions 1 through 6 while the Ubuntu edition starts at 13, so the
// (id, major) key stays unambiguous.
func Translate(id Identity) Identity {
	if base, ok := ubuntuBase[id.ID][id.Version.Major]; ok {
		return rebased(id, "Ubuntu", "ubuntu", base)
	}
	if base, ok := debianBase[id.ID][id.Version.Major]; ok {
		return rebased(id, "Debian", "debian", base)
	}
	return id
}

func rebased(id Identity, name, normalized, version string) Identity {
	out := id
	out.Name = name
	out.ID = normalized
	out.Version = ParseVersion(version)
	out.Codename = CodenameFor(normalized, out.Version)
	return out
}
