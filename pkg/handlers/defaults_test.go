package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

func TestConfigSaltSeedsAndOverrides(t *testing.T) {
	env := testEnv(t, ubuntu2004(), dispatch.Mode{Channel: dispatch.ChannelStable})
	env.EtcDir = filepath.Join(t.TempDir(), "etc", "salt")
	env.Cfg.KeysDir = filepath.Join(t.TempDir(), "pki")

	seedDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(seedDir, "minion"), []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("Failed to write seed: %v", err)
	}
	env.Cfg.ConfigDir = seedDir
	env.Cfg.MinionID = "web-01"
	env.Cfg.MasterAddress = "salt.example.com"

	if err := env.configSalt(context.Background()); err != nil {
		t.Fatalf("configSalt failed: %v", err)
	}

	for _, sub := range []string{"minion", "master"} {
		info, err := os.Stat(filepath.Join(env.Cfg.KeysDir, sub))
		if err != nil {
			t.Fatalf("Expected key dir %s: %v", sub, err)
		}
		if info.Mode().Perm() != 0o700 {
			t.Errorf("Expected 0700 on key dir, got %v", info.Mode().Perm())
		}
	}

	data, err := os.ReadFile(filepath.Join(env.EtcDir, "minion"))
	if err != nil {
		t.Fatalf("Expected seeded minion file: %v", err)
	}
	text := string(data)
	for _, want := range []string{"log_level: info", "id: web-01", "master: salt.example.com"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected minion config to contain %q, got:\n%s", want, text)
		}
	}
}

func TestPreseedMaster(t *testing.T) {
	env := testEnv(t, ubuntu2004(), dispatch.Mode{Channel: dispatch.ChannelStable})
	env.Cfg.KeysDir = filepath.Join(t.TempDir(), "pki")

	configDir := t.TempDir()
	keysDir := filepath.Join(configDir, "keys")
	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		t.Fatalf("Failed to create keys dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(keysDir, "web-01"), []byte("PUBKEY"), 0o644); err != nil {
		t.Fatalf("Failed to write key: %v", err)
	}
	env.Cfg.ConfigDir = configDir

	if err := env.preseedMaster(context.Background()); err != nil {
		t.Fatalf("preseedMaster failed: %v", err)
	}

	dest := filepath.Join(env.Cfg.KeysDir, "master", "minions", "web-01")
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("Expected preseeded key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected 0600 on preseeded key, got %v", info.Mode().Perm())
	}
}

func TestPreseedMasterNothingToDo(t *testing.T) {
	env := testEnv(t, ubuntu2004(), dispatch.Mode{Channel: dispatch.ChannelStable})
	env.Cfg.ConfigDir = t.TempDir() // no keys subdirectory

	if err := env.preseedMaster(context.Background()); err != nil {
		t.Fatalf("Expected missing keys dir to be a no-op, got %v", err)
	}
}
