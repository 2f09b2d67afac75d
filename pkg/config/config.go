// Package config assembles the bootstrap run configuration from flags,
// environment defaults, and an optional CUE profile, and validates it
// before the engine starts.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Config holds every setting a bootstrap run consumes.
type Config struct {
	// Mode selects the install channel and optional revision.
	Mode dispatch.Mode

	// Master installs and configures a salt-master.
	Master bool

	// Minion installs and configures a salt-minion. On by default.
	Minion bool

	// Syndic installs and configures a salt-syndic.
	Syndic bool

	// ConfigOnly skips dependency installation and package installation
	// and only writes configuration. Requires some configuration input.
	ConfigOnly bool

	// NoDeps skips the dependencies phase.
	NoDeps bool

	// NoStart leaves daemons stopped and skips the daemons-running
	// verification.
	NoStart bool

	// Force overwrites files that are otherwise written only once, such
	// as the repository registration and seeded configuration.
	Force bool

	// Insecure disables TLS verification on downloads.
	Insecure bool

	// NoRepo skips package repository registration.
	NoRepo bool

	// RepoURL overrides the package repository base URL.
	RepoURL string `validate:"omitempty,url"`

	// GitURL overrides the source repository for git installs. Accepts
	// any transport git understands, including scp-like SSH syntax.
	GitURL string

	// ForceShallow attempts a shallow clone even when the revision does
	// not look like a release tag.
	ForceShallow bool

	// Proxy routes downloads through an HTTP proxy.
	Proxy string `validate:"omitempty,url"`

	// ExtraPackages are installed alongside the dependencies phase.
	ExtraPackages []string

	// SleepSeconds is the settle wait before daemons-running
	// verification.
	SleepSeconds int `validate:"min=0,max=3600"`

	// ConfigDir is a directory of seed configuration files copied into
	// the salt configuration directory.
	ConfigDir string

	// KeysDir is the salt pki directory; minion and master key
	// directories are created beneath it and preseeded keys land in
	// its master/minions subdirectory.
	KeysDir string

	// Profile is a CUE profile file applied on top of flag defaults.
	Profile string

	// MinionID sets the minion identifier in the written configuration.
	MinionID string

	// MasterAddress sets the master the minion connects to.
	MasterAddress string

	// LogFile receives a copy of everything written to the terminal.
	LogFile string

	// DataDir holds the run journal and the metrics textfile.
	DataDir string

	// OTLPEndpoint enables trace export when set, host:port.
	OTLPEndpoint string `validate:"omitempty,hostname_port"`

	// Debug lowers the log threshold to debug.
	Debug bool

	// Quiet raises the log threshold to error.
	Quiet bool

	// NoColor disables colored terminal output.
	NoColor bool
}

// Default returns the configuration used when no flag or environment
// override is present.
func Default() Config {
	return Config{
		Mode:         dispatch.Mode{Channel: dispatch.ChannelStable},
		Minion:       true,
		SleepSeconds: 3,
		KeysDir:      "/etc/salt/pki",
		LogFile:      "/var/log/saltboot.log",
		DataDir:      "/var/lib/saltboot",
	}
}

// HasConfigInput reports whether any configuration source was supplied:
// a seed directory, a CUE profile, or inline minion settings.
func (c *Config) HasConfigInput() bool {
	return c.ConfigDir != "" || c.Profile != "" || c.MinionID != "" || c.MasterAddress != ""
}

// Roles returns the daemon names this run is expected to leave running.
func (c *Config) Roles() []string {
	var roles []string
	if c.Master {
		roles = append(roles, "salt-master")
	}
	if c.Minion {
		roles = append(roles, "salt-minion")
	}
	if c.Syndic {
		roles = append(roles, "salt-syndic")
	}
	return roles
}

var validate = validator.New()

// Validate checks field constraints and cross-field preconditions.
// Configuration-only mode without any configuration input is rejected
// here, before identity resolution runs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.ConfigOnly && !c.HasConfigInput() {
		return fmt.Errorf("configuration-only mode requires a configuration source (--config-dir, --profile, --minion-id, or --master-address)")
	}

	if c.Quiet && c.Debug {
		return fmt.Errorf("--quiet and --debug are mutually exclusive")
	}

	return nil
}
