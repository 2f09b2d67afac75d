package config

import (
	"testing"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Mode.Channel != dispatch.ChannelStable {
		t.Errorf("Expected stable channel, got %s", cfg.Mode.Channel)
	}
	if !cfg.Minion {
		t.Error("Expected minion role on by default")
	}
	if cfg.Master || cfg.Syndic {
		t.Error("Expected master and syndic off by default")
	}
	if cfg.SleepSeconds != 3 {
		t.Errorf("Expected settle sleep of 3 seconds, got %d", cfg.SleepSeconds)
	}
}

func TestConfig_Validate_ConfigOnlyNeedsInput(t *testing.T) {
	cfg := Default()
	cfg.ConfigOnly = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for config-only without configuration input")
	}

	cfg.ConfigDir = "/tmp/seed"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected no error with config dir set, got: %v", err)
	}

	cfg.ConfigDir = ""
	cfg.MinionID = "web-01"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected no error with minion id set, got: %v", err)
	}
}

func TestConfig_Validate_RejectsBadProxy(t *testing.T) {
	cfg := Default()
	cfg.Proxy = "not a proxy"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for malformed proxy URL")
	}

	cfg.Proxy = "http://proxy.internal:3128"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected no error for valid proxy URL, got: %v", err)
	}
}

func TestConfig_Validate_QuietDebugConflict(t *testing.T) {
	cfg := Default()
	cfg.Quiet = true
	cfg.Debug = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error when quiet and debug are both set")
	}
}

func TestConfig_Validate_SleepBounds(t *testing.T) {
	cfg := Default()
	cfg.SleepSeconds = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for negative sleep")
	}

	cfg.SleepSeconds = 10000
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for oversized sleep")
	}
}

func TestConfig_Roles(t *testing.T) {
	cfg := Default()
	cfg.Master = true
	cfg.Syndic = true

	roles := cfg.Roles()
	expected := []string{"salt-master", "salt-minion", "salt-syndic"}
	if len(roles) != len(expected) {
		t.Fatalf("Expected %d roles, got %d: %v", len(expected), len(roles), roles)
	}
	for i, role := range expected {
		if roles[i] != role {
			t.Errorf("Expected role %s at %d, got %s", role, i, roles[i])
		}
	}

	cfg = Default()
	cfg.Minion = false
	if len(cfg.Roles()) != 0 {
		t.Errorf("Expected no roles, got %v", cfg.Roles())
	}
}

func TestConfig_HasConfigInput(t *testing.T) {
	cfg := Default()
	if cfg.HasConfigInput() {
		t.Error("Expected no config input by default")
	}

	cases := []func(*Config){
		func(c *Config) { c.ConfigDir = "/seed" },
		func(c *Config) { c.Profile = "profile.cue" },
		func(c *Config) { c.MinionID = "web-01" },
		func(c *Config) { c.MasterAddress = "salt.example.com" },
	}
	for i, set := range cases {
		cfg := Default()
		set(&cfg)
		if !cfg.HasConfigInput() {
			t.Errorf("Case %d: expected config input to be detected", i)
		}
	}
}
