package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// profileSchema constrains bootstrap profiles. Every field is optional;
// a profile only overrides what it names.
const profileSchema = `
#Profile: {
	// channel selects the install mode.
	channel?: "stable" | "testing" | "daily" | "git" | "onedir"

	// rev pins a version, branch, tag, or commit.
	rev?: string

	// Role toggles.
	master?: bool
	minion?: bool
	syndic?: bool

	config_only?: bool
	no_deps?:     bool
	no_start?:    bool
	force?:       bool
	insecure?:    bool

	no_repo?:  bool
	repo_url?: string
	git_url?:  string
	proxy?:    string

	extra_packages?: [...string]

	sleep?: int & >=0 & <=3600

	config_dir?:     string
	keys_dir?:       string
	minion_id?:      string
	master_address?: string

	log_file?: string
	data_dir?: string
}
`

// Profile mirrors the optional fields of a CUE profile. Pointer fields
// distinguish "absent" from zero values.
type Profile struct {
	Channel       *string  `json:"channel"`
	Rev           *string  `json:"rev"`
	Master        *bool    `json:"master"`
	Minion        *bool    `json:"minion"`
	Syndic        *bool    `json:"syndic"`
	ConfigOnly    *bool    `json:"config_only"`
	NoDeps        *bool    `json:"no_deps"`
	NoStart       *bool    `json:"no_start"`
	Force         *bool    `json:"force"`
	Insecure      *bool    `json:"insecure"`
	NoRepo        *bool    `json:"no_repo"`
	RepoURL       *string  `json:"repo_url"`
	GitURL        *string  `json:"git_url"`
	Proxy         *string  `json:"proxy"`
	ExtraPackages []string `json:"extra_packages"`
	Sleep         *int     `json:"sleep"`
	ConfigDir     *string  `json:"config_dir"`
	KeysDir       *string  `json:"keys_dir"`
	MinionID      *string  `json:"minion_id"`
	MasterAddress *string  `json:"master_address"`
	LogFile       *string  `json:"log_file"`
	DataDir       *string  `json:"data_dir"`
}

// LoadProfile parses and validates a CUE profile file.
func LoadProfile(path string) (*Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return parseProfile(string(content), path)
}

func parseProfile(content, filename string) (*Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(profileSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile profile schema: %w", err)
	}
	schema = schema.LookupPath(cue.ParsePath("#Profile"))

	val := ctx.CompileString(content, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}

	var profile Profile
	if err := unified.Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// Apply overlays the profile onto a configuration. Only fields the
// profile names are changed.
func (p *Profile) Apply(cfg *Config) error {
	if p.Channel != nil {
		mode, err := dispatch.ParseMode([]string{*p.Channel})
		if err != nil {
			return fmt.Errorf("invalid profile channel: %w", err)
		}
		cfg.Mode.Channel = mode.Channel
	}
	if p.Rev != nil {
		cfg.Mode.Rev = *p.Rev
	}
	if p.Master != nil {
		cfg.Master = *p.Master
	}
	if p.Minion != nil {
		cfg.Minion = *p.Minion
	}
	if p.Syndic != nil {
		cfg.Syndic = *p.Syndic
	}
	if p.ConfigOnly != nil {
		cfg.ConfigOnly = *p.ConfigOnly
	}
	if p.NoDeps != nil {
		cfg.NoDeps = *p.NoDeps
	}
	if p.NoStart != nil {
		cfg.NoStart = *p.NoStart
	}
	if p.Force != nil {
		cfg.Force = *p.Force
	}
	if p.Insecure != nil {
		cfg.Insecure = *p.Insecure
	}
	if p.NoRepo != nil {
		cfg.NoRepo = *p.NoRepo
	}
	if p.RepoURL != nil {
		cfg.RepoURL = *p.RepoURL
	}
	if p.GitURL != nil {
		cfg.GitURL = *p.GitURL
	}
	if p.Proxy != nil {
		cfg.Proxy = *p.Proxy
	}
	if len(p.ExtraPackages) > 0 {
		cfg.ExtraPackages = append(cfg.ExtraPackages, p.ExtraPackages...)
	}
	if p.Sleep != nil {
		cfg.SleepSeconds = *p.Sleep
	}
	if p.ConfigDir != nil {
		cfg.ConfigDir = *p.ConfigDir
	}
	if p.KeysDir != nil {
		cfg.KeysDir = *p.KeysDir
	}
	if p.MinionID != nil {
		cfg.MinionID = *p.MinionID
	}
	if p.MasterAddress != nil {
		cfg.MasterAddress = *p.MasterAddress
	}
	if p.LogFile != nil {
		cfg.LogFile = *p.LogFile
	}
	if p.DataDir != nil {
		cfg.DataDir = *p.DataDir
	}
	return nil
}
