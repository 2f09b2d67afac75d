package distro

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ubuntu", "ubuntu"},
		{"Debian GNU/Linux", "debian"},
		{"Red Hat Enterprise Linux Server", "redhat"},
		{"CentOS Linux", "centos"},
		{"CentOS Stream", "centos"},
		{"Fedora Linux", "fedora"},
		{"Amazon Linux", "amazon"},
		{"Rocky Linux", "rocky"},
		{"AlmaLinux", "almalinux"},
		{"Oracle Linux Server", "oracle"},
		{"SUSE Linux Enterprise Server 15 SP4", "sles"},
		{"openSUSE Leap", "opensuse"},
		{"openSUSE Tumbleweed", "opensuse"},
		{"Arch Linux", "arch"},
		{"Alpine Linux", "alpine"},
		{"Gentoo", "gentoo"},
		{"FreeBSD", "freebsd"},
		{"VMware Photon OS", "photon"},
		{"Linux Mint", "linuxmint"},
		{"Pop!_OS", "pop"},
		{"elementary OS", "elementary_os"},
		{"KDE neon", "neon"},
		{"Kali GNU/Linux", "kali"},
		{"Raspbian GNU/Linux", "raspbian"},
		{"Devuan GNU+Linux", "devuan"},
		{"Scientific Linux", "scientific"},
		{"TurnKey GNU/Linux", "turnkey"},
		{"Void Linux", "void"},
		{"  Ubuntu  ", "ubuntu"},
		{"Some New Distro 9", "some_new_distro_9"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestIdentity_String(t *testing.T) {
	id := Identity{ID: "ubuntu", Version: Version{Major: "20", Minor: "04"}}
	if got := id.String(); got != "ubuntu 20.04" {
		t.Errorf("Expected %q, got %q", "ubuntu 20.04", got)
	}

	rolling := Identity{ID: "arch"}
	if got := rolling.String(); got != "arch" {
		t.Errorf("Expected %q, got %q", "arch", got)
	}
}
