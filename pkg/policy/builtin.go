package policy

// supportRego is the built-in support matrix. The floors track the
// oldest release the Salt package repositories still carry; entries
// are majors, compared against the parsed identity.
const supportRego = `package saltboot.support

import rego.v1

# Oldest still-served major version per distribution. Anything below
# is end-of-life for packaged installs.
eol_floor := {
	"ubuntu": 20,
	"debian": 10,
	"centos": 8,
	"redhat": 8,
	"oracle": 8,
	"scientific": 8,
	"almalinux": 8,
	"rocky": 8,
	"fedora": 38,
	"amazon": 2,
	"opensuse": 15,
	"sles": 12,
	"freebsd": 12,
	"photon": 3,
	"alpine": 3,
}

deny contains msg if {
	floor := eol_floor[input.distro]
	input.major < floor
	msg := sprintf("%s %d is end-of-life: the oldest supported major is %d", [input.distro, input.major, floor])
}

# The daily PPA only exists for Ubuntu.
deny contains msg if {
	input.channel == "daily"
	input.distro != "ubuntu"
	msg := sprintf("the daily channel is only published for ubuntu, not %s", [input.distro])
}

# Testing packages are only staged for the Debian and EL families.
testing_distros := {"debian", "centos", "redhat", "oracle", "almalinux", "rocky", "amazon"}

deny contains msg if {
	input.channel == "testing"
	not input.distro in testing_distros
	msg := sprintf("the testing channel is not published for %s", [input.distro])
}
`
