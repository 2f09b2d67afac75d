package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

func TestParseProfile(t *testing.T) {
	content := `
channel: "git"
rev:     "v3006.1"
master:  true
proxy:   "http://proxy.internal:3128"
extra_packages: ["htop", "vim"]
sleep: 10
`

	profile, err := parseProfile(content, "profile.cue")
	if err != nil {
		t.Fatalf("Failed to parse profile: %v", err)
	}

	if profile.Channel == nil || *profile.Channel != "git" {
		t.Errorf("Expected channel git, got %v", profile.Channel)
	}
	if profile.Rev == nil || *profile.Rev != "v3006.1" {
		t.Errorf("Expected rev v3006.1, got %v", profile.Rev)
	}
	if profile.Master == nil || !*profile.Master {
		t.Error("Expected master to be set")
	}
	if profile.Minion != nil {
		t.Error("Expected minion to be absent")
	}
	if len(profile.ExtraPackages) != 2 {
		t.Errorf("Expected 2 extra packages, got %v", profile.ExtraPackages)
	}
	if profile.Sleep == nil || *profile.Sleep != 10 {
		t.Errorf("Expected sleep 10, got %v", profile.Sleep)
	}
}

func TestParseProfile_RejectsUnknownField(t *testing.T) {
	content := `
channnel: "stable"
`

	if _, err := parseProfile(content, "profile.cue"); err == nil {
		t.Fatal("Expected error for misspelled field")
	}
}

func TestParseProfile_RejectsBadChannel(t *testing.T) {
	content := `
channel: "nightly"
`

	if _, err := parseProfile(content, "profile.cue"); err == nil {
		t.Fatal("Expected error for unknown channel")
	}
}

func TestParseProfile_RejectsBadSleep(t *testing.T) {
	content := `
sleep: -5
`

	if _, err := parseProfile(content, "profile.cue"); err == nil {
		t.Fatal("Expected error for negative sleep")
	}
}

func TestProfile_Apply(t *testing.T) {
	content := `
channel: "git"
rev:     "master"
minion:  false
syndic:  true
config_dir: "/srv/seed"
extra_packages: ["tmux"]
`

	profile, err := parseProfile(content, "profile.cue")
	if err != nil {
		t.Fatalf("Failed to parse profile: %v", err)
	}

	cfg := Default()
	cfg.ExtraPackages = []string{"htop"}
	if err := profile.Apply(&cfg); err != nil {
		t.Fatalf("Failed to apply profile: %v", err)
	}

	if cfg.Mode.Channel != dispatch.ChannelGit {
		t.Errorf("Expected git channel, got %s", cfg.Mode.Channel)
	}
	if cfg.Mode.Rev != "master" {
		t.Errorf("Expected rev master, got %s", cfg.Mode.Rev)
	}
	if cfg.Minion {
		t.Error("Expected minion to be disabled by profile")
	}
	if !cfg.Syndic {
		t.Error("Expected syndic to be enabled by profile")
	}
	if cfg.ConfigDir != "/srv/seed" {
		t.Errorf("Expected config dir /srv/seed, got %s", cfg.ConfigDir)
	}
	if len(cfg.ExtraPackages) != 2 || cfg.ExtraPackages[1] != "tmux" {
		t.Errorf("Expected extra packages appended, got %v", cfg.ExtraPackages)
	}

	// Fields the profile does not name keep their defaults.
	if cfg.SleepSeconds != 3 {
		t.Errorf("Expected default sleep untouched, got %d", cfg.SleepSeconds)
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.cue")
	content := []byte(`channel: "onedir"` + "\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}
	if profile.Channel == nil || *profile.Channel != "onedir" {
		t.Errorf("Expected channel onedir, got %v", profile.Channel)
	}

	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.cue")); err == nil {
		t.Fatal("Expected error for missing profile file")
	}
}
