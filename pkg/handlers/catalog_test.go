package handlers

import (
	"testing"

	"github.com/saltboot/saltboot/pkg/config"
	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
)

func testEnv(t *testing.T, id distro.Identity, mode dispatch.Mode) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.Mode = mode
	env, err := NewEnv(&cfg, id)
	if err != nil {
		t.Fatalf("NewEnv failed: %v", err)
	}
	return env
}

func ubuntu2004() distro.Identity {
	return distro.Identity{
		Kernel:   "linux",
		Name:     "Ubuntu",
		ID:       "ubuntu",
		Version:  distro.Version{Major: "20", Minor: "04"},
		Codename: "focal",
	}
}

func TestBuildCatalog(t *testing.T) {
	env := testEnv(t, ubuntu2004(), dispatch.Mode{Channel: dispatch.ChannelStable})
	reg, err := Build(env)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// A sample of names every catalog must carry.
	required := []string{
		"install_ubuntu_stable_deps",
		"install_ubuntu_stable",
		"install_debian_git",
		"install_centos_stable",
		"install_centos_7_git_deps",
		"install_opensuse_stable",
		"install_arch_stable",
		"install_alpine_stable",
		"install_freebsd_stable",
		"install_photon_stable",
		"config_salt",
		"preseed_master",
		"daemons_running",
	}
	for _, name := range required {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("Expected handler %s in the catalog", name)
		}
	}
}

func TestCatalogResolution(t *testing.T) {
	tests := []struct {
		name  string
		id    distro.Identity
		mode  dispatch.Mode
		phase dispatch.Phase
		want  string
	}{
		{
			name:  "ubuntu stable deps resolves family recipe",
			id:    ubuntu2004(),
			mode:  dispatch.Mode{Channel: dispatch.ChannelStable},
			phase: dispatch.PhaseDependencies,
			want:  "install_ubuntu_stable_deps",
		},
		{
			name:  "el7 git deps picks the versioned recipe",
			id:    distro.Identity{Kernel: "linux", ID: "centos", Version: distro.Version{Major: "7", Minor: "9"}},
			mode:  dispatch.Mode{Channel: dispatch.ChannelGit},
			phase: dispatch.PhaseDependencies,
			want:  "install_centos_7_git_deps",
		},
		{
			name:  "el8 git deps falls through to the family recipe",
			id:    distro.Identity{Kernel: "linux", ID: "centos", Version: distro.Version{Major: "8", Minor: "5"}},
			mode:  dispatch.Mode{Channel: dispatch.ChannelGit},
			phase: dispatch.PhaseDependencies,
			want:  "install_centos_git_deps",
		},
		{
			name:  "configure on an unknown distro resolves the default",
			id:    distro.Identity{Kernel: "linux", ID: "slackware", Version: distro.Version{Major: "15", Minor: "0"}},
			mode:  dispatch.Mode{Channel: dispatch.ChannelStable},
			phase: dispatch.PhaseConfigure,
			want:  "config_salt",
		},
		{
			name:  "onedir install shares the stable recipe name space",
			id:    ubuntu2004(),
			mode:  dispatch.Mode{Channel: dispatch.ChannelOnedir},
			phase: dispatch.PhaseInstall,
			want:  "install_ubuntu_onedir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testEnv(t, tt.id, tt.mode)
			reg, err := Build(env)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			res := dispatch.Resolve(reg, tt.phase, tt.id, tt.mode)
			if !res.Found() {
				t.Fatalf("Expected %s to resolve, probed %v", tt.phase, res.Candidates)
			}
			if res.Name != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, res.Name)
			}
		})
	}
}

func TestInstallUnresolvedOnUnknownDistro(t *testing.T) {
	id := distro.Identity{Kernel: "linux", ID: "slackware", Version: distro.Version{Major: "15", Minor: "0"}}
	env := testEnv(t, id, dispatch.Mode{Channel: dispatch.ChannelStable})
	reg, err := Build(env)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res := dispatch.Resolve(reg, dispatch.PhaseInstall, id, dispatch.Mode{Channel: dispatch.ChannelStable})
	if res.Found() {
		t.Fatalf("Expected install to be unresolved for slackware, got %s", res.Name)
	}
}
