package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
)

func TestRepoBase(t *testing.T) {
	env := testEnv(t, ubuntu2004(), dispatch.Mode{Channel: dispatch.ChannelStable})
	if got := env.repoBase(); got != DefaultRepoBase {
		t.Errorf("Expected default repo base, got %s", got)
	}

	env.Cfg.RepoURL = "https://mirror.example.com/salt/"
	if got := env.repoBase(); got != "https://mirror.example.com/salt" {
		t.Errorf("Expected trimmed override, got %s", got)
	}
}

func TestRepoVersionPath(t *testing.T) {
	env := testEnv(t, ubuntu2004(), dispatch.Mode{Channel: dispatch.ChannelStable})
	if got := env.repoVersionPath(); got != "latest" {
		t.Errorf("Expected latest, got %s", got)
	}

	env.Mode.Rev = "3006.4"
	if got := env.repoVersionPath(); got != "minor/3006.4" {
		t.Errorf("Expected minor/3006.4, got %s", got)
	}
}

func TestRegisterYumRepoWriteOnce(t *testing.T) {
	id := distro.Identity{Kernel: "linux", ID: "centos", Version: distro.Version{Major: "8", Minor: "5"}}
	env := testEnv(t, id, dispatch.Mode{Channel: dispatch.ChannelStable})
	env.YumRepoFile = filepath.Join(t.TempDir(), "salt.repo")

	if err := env.registerYumRepo(context.Background()); err != nil {
		t.Fatalf("registerYumRepo failed: %v", err)
	}
	data, err := os.ReadFile(env.YumRepoFile)
	if err != nil {
		t.Fatalf("Failed to read repo file: %v", err)
	}
	if !strings.Contains(string(data), "redhat/8/$basearch/latest") {
		t.Errorf("Expected versioned baseurl, got:\n%s", data)
	}

	// Second run without force must not touch the file.
	if err := os.WriteFile(env.YumRepoFile, []byte("operator edited\n"), 0o644); err != nil {
		t.Fatalf("Failed to overwrite repo file: %v", err)
	}
	if err := env.registerYumRepo(context.Background()); err != nil {
		t.Fatalf("registerYumRepo failed: %v", err)
	}
	data, _ = os.ReadFile(env.YumRepoFile)
	if string(data) != "operator edited\n" {
		t.Errorf("Expected existing file to be preserved, got:\n%s", data)
	}

	// Force overwrites.
	env.Cfg.Force = true
	if err := env.registerYumRepo(context.Background()); err != nil {
		t.Fatalf("registerYumRepo failed: %v", err)
	}
	data, _ = os.ReadFile(env.YumRepoFile)
	if !strings.Contains(string(data), "[salt-repo]") {
		t.Errorf("Expected forced rewrite, got:\n%s", data)
	}
}

func TestRegisterYumRepoDisabled(t *testing.T) {
	id := distro.Identity{Kernel: "linux", ID: "centos", Version: distro.Version{Major: "8", Minor: ""}}
	env := testEnv(t, id, dispatch.Mode{Channel: dispatch.ChannelStable})
	env.YumRepoFile = filepath.Join(t.TempDir(), "salt.repo")
	env.Cfg.NoRepo = true

	if err := env.registerYumRepo(context.Background()); err != nil {
		t.Fatalf("registerYumRepo failed: %v", err)
	}
	if _, err := os.Stat(env.YumRepoFile); !os.IsNotExist(err) {
		t.Errorf("Expected no repo file with --no-repo")
	}
}
