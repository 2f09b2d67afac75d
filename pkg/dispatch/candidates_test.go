package dispatch

import (
	"reflect"
	"strings"
	"testing"

	"github.com/saltboot/saltboot/pkg/distro"
)

var (
	ubuntuFocal = distro.Identity{ID: "ubuntu", Version: distro.Version{Major: "20", Minor: "04"}}
	centosSeven = distro.Identity{ID: "centos", Version: distro.Version{Major: "7"}}
	archRolling = distro.Identity{ID: "arch"}
	stable      = Mode{Channel: ChannelStable}
)

func TestCandidates_FullIdentityOrder(t *testing.T) {
	got := Candidates(PhaseDependencies, ubuntuFocal, stable)
	want := []string{
		"install_ubuntu_20_04_stable_deps",
		"install_ubuntu_20_04_deps",
		"install_ubuntu_20_stable_deps",
		"install_ubuntu_20_deps",
		"install_ubuntu_stable_deps",
		"install_ubuntu_deps",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCandidates_UnversionedCollapses(t *testing.T) {
	got := Candidates(PhaseDependencies, archRolling, stable)
	want := []string{
		"install_arch_stable_deps",
		"install_arch_deps",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCandidates_MajorOnly(t *testing.T) {
	got := Candidates(PhaseInstall, centosSeven, Mode{Channel: ChannelGit})
	want := []string{
		"install_centos_7_git",
		"install_centos_7",
		"install_centos_git",
		"install_centos",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCandidates_DefaultAppendedLast(t *testing.T) {
	got := Candidates(PhaseConfigure, ubuntuFocal, stable)

	if got[0] != "config_ubuntu_20_04_stable_salt" {
		t.Errorf("Expected most specific candidate first, got %q", got[0])
	}
	if got[len(got)-1] != "config_salt" {
		t.Errorf("Expected config_salt last, got %q", got[len(got)-1])
	}

	deps := Candidates(PhaseDependencies, ubuntuFocal, stable)
	for _, name := range deps {
		if name == "install_deps" {
			t.Error("Expected no phase-wide default for dependencies")
		}
	}
}

func TestCandidates_DaemonsRunning(t *testing.T) {
	got := Candidates(PhaseDaemonsRunning, ubuntuFocal, stable)

	if got[0] != "daemons_running_ubuntu_20_04_stable" {
		t.Errorf("Expected daemons_running_ubuntu_20_04_stable first, got %q", got[0])
	}
	if got[len(got)-1] != "daemons_running" {
		t.Errorf("Expected daemons_running last, got %q", got[len(got)-1])
	}
}

func TestCandidates_WellFormedAndUnique(t *testing.T) {
	identities := []distro.Identity{
		ubuntuFocal,
		centosSeven,
		archRolling,
		{ID: "debian", Version: distro.Version{Major: "7", Minor: "0"}},
		{ID: "elementary_os", Version: distro.Version{Major: "02"}},
	}
	modes := []Mode{
		{Channel: ChannelStable},
		{Channel: ChannelTesting},
		{Channel: ChannelDaily},
		{Channel: ChannelGit},
		{Channel: ChannelOnedir},
	}

	for _, id := range identities {
		for _, mode := range modes {
			for _, phase := range Phases() {
				seen := make(map[string]bool)
				for _, name := range Candidates(phase, id, mode) {
					if strings.Contains(name, "__") || strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
						t.Errorf("Malformed candidate %q for %s/%s/%s", name, phase, id.ID, mode.Channel)
					}
					if seen[name] {
						t.Errorf("Duplicate candidate %q for %s/%s/%s", name, phase, id.ID, mode.Channel)
					}
					seen[name] = true
				}
			}
		}
	}
}

func TestCandidates_Pure(t *testing.T) {
	first := Candidates(PhaseDependencies, ubuntuFocal, stable)
	second := Candidates(PhaseDependencies, ubuntuFocal, stable)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical lists, got %v and %v", first, second)
	}
}
