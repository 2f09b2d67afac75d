package distro

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/saltboot/saltboot/pkg/platform"
)

var linuxSys = platform.RawSystem{
	Kernel:        "Linux",
	KernelRelease: "5.15.0-91-generic",
	Machine:       "x86_64",
}

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

func TestResolve_UbuntuFromOSRelease(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/os-release", "NAME=\"Ubuntu\"\nVERSION_ID=\"20.04\"\nID=ubuntu\n")

	id, err := Resolve(linuxSys, root)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.ID != "ubuntu" || id.Version.Major != "20" || id.Version.Minor != "04" {
		t.Errorf("Expected ubuntu 20.04, got %s", id.String())
	}
	if id.Codename != "focal" {
		t.Errorf("Expected codename focal, got %q", id.Codename)
	}
	if id.Kernel != "linux" {
		t.Errorf("Expected kernel linux, got %q", id.Kernel)
	}
}

func TestResolve_CentOSFromMarkerFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/redhat-release", "CentOS Linux release 7.9.2009 (Core)\n")
	writeFixture(t, root, "etc/centos-release", "CentOS Linux release 7.9.2009 (Core)\n")

	id, err := Resolve(linuxSys, root)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.ID != "centos" {
		t.Errorf("Expected centos, got %q", id.ID)
	}
	if id.Version.Major != "7" || id.Version.Minor != "9" {
		t.Errorf("Expected version 7.9, got %q", id.Version.String())
	}
}

func TestResolve_LSBReleaseFallback(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/lsb-release",
		"DISTRIB_ID=Ubuntu\nDISTRIB_RELEASE=18.04\nDISTRIB_CODENAME=bionic\n")

	id, err := Resolve(linuxSys, root)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.ID != "ubuntu" || id.Version.String() != "18.04" {
		t.Errorf("Expected ubuntu 18.04, got %s", id.String())
	}
}

func TestResolve_RollingReleaseKeepsEmptyVersion(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/os-release", "NAME=\"Arch Linux\"\nID=arch\n")
	writeFixture(t, root, "etc/arch-release", "")

	id, err := Resolve(linuxSys, root)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.ID != "arch" {
		t.Errorf("Expected arch, got %q", id.ID)
	}
	if !id.Version.IsZero() {
		t.Errorf("Expected empty version, got %q", id.Version.String())
	}
}

func TestResolve_DebianPointReleaseBackfill(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/os-release", "NAME=\"Debian GNU/Linux\"\nVERSION_ID=\"12\"\nID=debian\n")
	writeFixture(t, root, "etc/debian_version", "12.4\n")

	id, err := Resolve(linuxSys, root)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.Version.Major != "12" || id.Version.Minor != "4" {
		t.Errorf("Expected version 12.4, got %q", id.Version.String())
	}
	if id.Codename != "bookworm" {
		t.Errorf("Expected codename bookworm, got %q", id.Codename)
	}
}

func TestResolve_KaliTranslatedBeforeUse(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/os-release", "NAME=\"Kali GNU/Linux\"\nVERSION_ID=\"1.0\"\nID=kali\n")

	id, err := Resolve(linuxSys, root)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.ID != "debian" || id.Version.String() != "7.0" {
		t.Errorf("Expected debian 7.0, got %s", id.String())
	}
	if id.Codename != "wheezy" {
		t.Errorf("Expected codename wheezy, got %q", id.Codename)
	}
}

func TestResolve_FreeBSDFromKernel(t *testing.T) {
	sys := platform.RawSystem{Kernel: "FreeBSD", KernelRelease: "13.2-RELEASE-p1"}

	id, err := Resolve(sys, t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id.ID != "freebsd" || id.Version.String() != "13.2" {
		t.Errorf("Expected freebsd 13.2, got %s", id.String())
	}
}

func TestResolve_UnsupportedKernel(t *testing.T) {
	sys := platform.RawSystem{Kernel: "BeOS"}

	_, err := Resolve(sys, t.TempDir())
	if !errors.Is(err, ErrUnsupportedKernel) {
		t.Fatalf("Expected ErrUnsupportedKernel, got: %v", err)
	}
}

func TestResolve_UnknownLinuxDistribution(t *testing.T) {
	_, err := Resolve(linuxSys, t.TempDir())
	if !errors.Is(err, ErrUnknownDistribution) {
		t.Fatalf("Expected ErrUnknownDistribution, got: %v", err)
	}
}
