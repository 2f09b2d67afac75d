package platform

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseOSRelease(t *testing.T) {
	input := `NAME="Ubuntu"
VERSION="20.04.6 LTS (Focal Fossa)"
ID=ubuntu
ID_LIKE=debian
# a comment
VERSION_ID="20.04"
TAG='single quoted'
MESSAGE="A \"quoted\" value"

MALFORMED LINE
`
	kv := ParseOSRelease(strings.NewReader(input))

	tests := map[string]string{
		"NAME":       "Ubuntu",
		"ID":         "ubuntu",
		"VERSION_ID": "20.04",
		"TAG":        "single quoted",
		"MESSAGE":    `A "quoted" value`,
	}
	for key, want := range tests {
		if got := kv[key]; got != want {
			t.Errorf("Expected %s=%q, got %q", key, want, got)
		}
	}
	if _, ok := kv["MALFORMED"]; ok {
		t.Error("Expected malformed line to be ignored")
	}
}

func TestReadOSRelease_UsrLibFallback(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "usr/lib/os-release")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := os.WriteFile(path, []byte("NAME=\"Debian GNU/Linux\"\n"), 0o644); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	kv, ok := ReadOSRelease(root)
	if !ok {
		t.Fatal("Expected os-release to be found in /usr/lib")
	}
	if kv["NAME"] != "Debian GNU/Linux" {
		t.Errorf("Expected Debian GNU/Linux, got %q", kv["NAME"])
	}
}

func TestReadLSBRelease(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "etc"), 0o755); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	content := "DISTRIB_ID=Ubuntu\nDISTRIB_RELEASE=20.04\nDISTRIB_CODENAME=focal\nDISTRIB_DESCRIPTION=\"Ubuntu 20.04.6 LTS\"\n"
	if err := os.WriteFile(filepath.Join(root, "etc/lsb-release"), []byte(content), 0o644); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	kv, ok := ReadLSBRelease(root)
	if !ok {
		t.Fatal("Expected lsb-release to be read")
	}
	if kv["DISTRIB_ID"] != "Ubuntu" || kv["DISTRIB_RELEASE"] != "20.04" {
		t.Errorf("Unexpected values: %v", kv)
	}
	if kv["DISTRIB_DESCRIPTION"] != "Ubuntu 20.04.6 LTS" {
		t.Errorf("Expected quotes stripped, got %q", kv["DISTRIB_DESCRIPTION"])
	}
}

func TestSortReleaseFiles(t *testing.T) {
	input := []string{
		"lsb-release",
		"os-release",
		"weird-release",
		"centos-release",
		"debian_version",
		"redhat-release",
		"fedora-release",
	}

	want := []string{
		"redhat-release",
		"centos-release",
		"fedora-release",
		"debian_version",
		"os-release",
		"lsb-release",
		"weird-release",
	}

	got := SortReleaseFiles(input)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSortReleaseFiles_OrderIndependent(t *testing.T) {
	a := SortReleaseFiles([]string{"centos-release", "lsb-release", "redhat-release"})
	b := SortReleaseFiles([]string{"lsb-release", "redhat-release", "centos-release"})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected input order not to matter, got %v and %v", a, b)
	}
}

func TestReleaseFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "etc/not-a-file-release"), 0o755); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	for _, name := range []string{"centos-release", "os-release", "custom-release"} {
		if err := os.WriteFile(filepath.Join(root, "etc", name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	got := ReleaseFiles(root)
	want := []string{"centos-release", "os-release", "custom-release"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestReadReleaseFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "etc"), 0o755); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	files := map[string]string{
		"redhat-release": "CentOS Linux release 7.9.2009 (Core)\n",
		"alpine-release": "3.18.4\n",
		"debian_version": "12.4\n",
		"empty-release":  "",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, "etc", name), []byte(content), 0o644); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	name, version, ok := ReadReleaseFile(root, "redhat-release")
	if !ok || name != "CentOS Linux" || version != "7.9.2009" {
		t.Errorf("redhat-release: expected CentOS Linux 7.9.2009, got %q %q (ok=%v)", name, version, ok)
	}

	name, version, ok = ReadReleaseFile(root, "alpine-release")
	if !ok || name != "alpine" || version != "3.18.4" {
		t.Errorf("alpine-release: expected alpine 3.18.4, got %q %q (ok=%v)", name, version, ok)
	}

	name, version, ok = ReadReleaseFile(root, "debian_version")
	if !ok || name != "debian" || version != "12.4" {
		t.Errorf("debian_version: expected debian 12.4, got %q %q (ok=%v)", name, version, ok)
	}

	if _, _, ok := ReadReleaseFile(root, "empty-release"); ok {
		t.Error("Expected empty file to report not ok")
	}
	if _, _, ok := ReadReleaseFile(root, "missing-release"); ok {
		t.Error("Expected missing file to report not ok")
	}
}
