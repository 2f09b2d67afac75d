// Package commands wires the saltboot command line: the root bootstrap
// command plus the detect, resolve, history, and version subcommands.
package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/saltboot/saltboot/pkg/config"
	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
	"github.com/saltboot/saltboot/pkg/gitsource"
	"github.com/saltboot/saltboot/pkg/handlers"
	"github.com/saltboot/saltboot/pkg/journal"
	"github.com/saltboot/saltboot/pkg/lifecycle"
	"github.com/saltboot/saltboot/pkg/platform"
	"github.com/saltboot/saltboot/pkg/policy"
	"github.com/saltboot/saltboot/pkg/telemetry"
)

// rootFlags mirrors every persistent flag. Values move into the
// config.Config in buildConfig, where flag precedence over the profile
// is decided per flag.
type rootFlags struct {
	debug         bool
	quiet         bool
	noColor       bool
	configDir     string
	keysDir       string
	master        bool
	syndic        bool
	noMinion      bool
	configOnly    bool
	noDeps        bool
	sleep         int
	force         bool
	proxy         string
	pkgs          []string
	noRepo        bool
	repoURL       string
	insecure      bool
	noStart       bool
	gitURL        string
	shallow       bool
	profile       string
	minionID      string
	masterAddress string
	logFile       string
	dataDir       string
	otlpEndpoint  string
}

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	f := &rootFlags{}
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:   "saltboot [stable|testing|daily|git|onedir] [version|branch|tag|commit]",
		Short: "Saltboot - Salt installation bootstrap",
		Long: `Saltboot installs and configures Salt on the host it runs on.

It identifies the distribution, checks the release against the support
policy, and runs the bootstrap lifecycle: dependencies, configuration,
key preseeding, installation, service management, and a final check
that the selected daemons are running.

The positional arguments select the install source: a release channel
(stable, testing, daily, git, onedir) and an optional version pin or,
for git installs, a branch, tag, or commit.`,
		Example: `  # Install the latest stable salt-minion
  saltboot

  # Install a pinned stable release of master and minion
  saltboot -M stable 3006.4

  # Install from a git tag
  saltboot git v3006.4

  # Only write configuration, no packages
  saltboot -C -i web-01 -A salt.example.com`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := seedFromEnv(cmd.Root().PersistentFlags()); err != nil {
				return lifecycle.NewUsageError("failed to read environment defaults", err)
			}
			_, err := telemetry.SetupLogger(telemetry.LoggerOptions{
				Debug:   f.debug,
				Quiet:   f.quiet,
				NoColor: f.noColor,
			})
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd, args, f, version)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return lifecycle.NewUsageError("invalid invocation", err)
	})

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&f.debug, "debug", "D", false, "enable debug logging")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	pf.BoolVarP(&f.noColor, "no-color", "n", false, "disable colored output")
	pf.StringVarP(&f.configDir, "config-dir", "c", "", "directory of seed configuration files")
	pf.StringVarP(&f.keysDir, "keys-dir", "k", defaults.KeysDir, "salt key directory")
	pf.BoolVarP(&f.master, "master", "M", false, "install and configure a salt-master")
	pf.BoolVarP(&f.syndic, "syndic", "S", false, "install and configure a salt-syndic")
	pf.BoolVarP(&f.noMinion, "no-minion", "N", false, "do not install a salt-minion")
	pf.BoolVarP(&f.configOnly, "config-only", "C", false, "only write configuration, skip installation")
	pf.BoolVarP(&f.noDeps, "no-deps", "b", false, "skip the dependencies phase")
	pf.IntVarP(&f.sleep, "sleep", "s", defaults.SleepSeconds, "seconds to wait before verifying daemons")
	pf.BoolVarP(&f.force, "force", "F", false, "overwrite files normally written only once")
	pf.StringVarP(&f.proxy, "proxy", "H", "", "HTTP proxy for downloads")
	pf.StringArrayVarP(&f.pkgs, "pkg", "p", nil, "extra package to install (repeatable)")
	pf.BoolVarP(&f.noRepo, "no-repo", "r", false, "skip package repository registration")
	pf.StringVarP(&f.repoURL, "repo-url", "R", "", "package repository base URL override")
	pf.BoolVarP(&f.insecure, "insecure", "I", false, "disable TLS verification on downloads")
	pf.BoolVarP(&f.noStart, "no-start", "X", false, "leave daemons stopped, skip verification")
	pf.StringVarP(&f.gitURL, "git-url", "g", "", "source repository for git installs")
	pf.BoolVarP(&f.shallow, "shallow", "f", false, "force a shallow clone for git installs")
	pf.StringVar(&f.profile, "profile", "", "CUE profile file applied before the flags")
	pf.StringVarP(&f.minionID, "minion-id", "i", "", "minion identifier to configure")
	pf.StringVarP(&f.masterAddress, "master-address", "A", "", "master address the minion connects to")
	pf.StringVar(&f.logFile, "log-file", defaults.LogFile, "log file receiving a copy of all output")
	pf.StringVar(&f.dataDir, "data-dir", defaults.DataDir, "directory for the run journal and metrics")
	pf.StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP collector address for trace export")

	// Add subcommands
	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newResolveCommand(f))
	rootCmd.AddCommand(newHistoryCommand(f))
	rootCmd.AddCommand(newVersionCommand(version, commit, buildDate))

	return rootCmd
}

// seedFromEnv applies SALTBOOT_* environment variables as defaults for
// flags the invocation did not set. The proxy flag additionally honors
// the historic SALTBOOT_HTTP_PROXY name.
func seedFromEnv(flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix("SALTBOOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("proxy", "SALTBOOT_HTTP_PROXY"); err != nil {
		return fmt.Errorf("failed to bind proxy environment variable: %w", err)
	}

	var seedErr error
	flags.VisitAll(func(fl *pflag.Flag) {
		if fl.Changed || !v.IsSet(fl.Name) {
			return
		}
		if err := flags.Set(fl.Name, v.GetString(fl.Name)); err != nil && seedErr == nil {
			seedErr = fmt.Errorf("failed to apply %s from the environment: %w", fl.Name, err)
		}
	})
	return seedErr
}

// buildConfig assembles the run configuration: defaults, then the
// profile, then any flag the invocation or the environment changed,
// then the positional install mode. Validation failures are usage
// errors.
func buildConfig(cmd *cobra.Command, args []string, f *rootFlags) (*config.Config, error) {
	cfg := config.Default()

	if f.profile != "" {
		profile, err := config.LoadProfile(f.profile)
		if err != nil {
			return nil, lifecycle.NewUsageError("invalid profile", err)
		}
		if err := profile.Apply(&cfg); err != nil {
			return nil, lifecycle.NewUsageError("invalid profile", err)
		}
		cfg.Profile = f.profile
	}

	fl := cmd.Flags()
	set := func(name string, apply func()) {
		if fl.Changed(name) {
			apply()
		}
	}
	set("debug", func() { cfg.Debug = f.debug })
	set("quiet", func() { cfg.Quiet = f.quiet })
	set("no-color", func() { cfg.NoColor = f.noColor })
	set("config-dir", func() { cfg.ConfigDir = f.configDir })
	set("keys-dir", func() { cfg.KeysDir = f.keysDir })
	set("master", func() { cfg.Master = f.master })
	set("syndic", func() { cfg.Syndic = f.syndic })
	set("no-minion", func() { cfg.Minion = !f.noMinion })
	set("config-only", func() { cfg.ConfigOnly = f.configOnly })
	set("no-deps", func() { cfg.NoDeps = f.noDeps })
	set("sleep", func() { cfg.SleepSeconds = f.sleep })
	set("force", func() { cfg.Force = f.force })
	set("proxy", func() { cfg.Proxy = f.proxy })
	set("pkg", func() { cfg.ExtraPackages = f.pkgs })
	set("no-repo", func() { cfg.NoRepo = f.noRepo })
	set("repo-url", func() { cfg.RepoURL = f.repoURL })
	set("insecure", func() { cfg.Insecure = f.insecure })
	set("no-start", func() { cfg.NoStart = f.noStart })
	set("git-url", func() { cfg.GitURL = f.gitURL })
	set("shallow", func() { cfg.ForceShallow = f.shallow })
	set("minion-id", func() { cfg.MinionID = f.minionID })
	set("master-address", func() { cfg.MasterAddress = f.masterAddress })
	set("log-file", func() { cfg.LogFile = f.logFile })
	set("data-dir", func() { cfg.DataDir = f.dataDir })
	set("otlp-endpoint", func() { cfg.OTLPEndpoint = f.otlpEndpoint })

	if len(args) > 0 {
		mode, err := dispatch.ParseMode(args)
		if err != nil {
			return nil, lifecycle.NewUsageError("invalid install mode", err)
		}
		cfg.Mode = mode
	}

	if err := cfg.Validate(); err != nil {
		return nil, lifecycle.NewUsageError("invalid configuration", err)
	}
	return &cfg, nil
}

// runBootstrap is the root command body: identity resolution, policy
// gate, catalog construction, and the orchestrated run.
func runBootstrap(cmd *cobra.Command, args []string, f *rootFlags, version string) error {
	ctx := cmd.Context()

	cfg, err := buildConfig(cmd, args, f)
	if err != nil {
		return err
	}

	// Step 1: logging. The log pipe captures child process output at
	// the descriptor level; where it is unavailable the logger's own
	// file copy stands in.
	var pipe *telemetry.LogPipe
	logOpts := telemetry.LoggerOptions{
		Debug:   cfg.Debug,
		Quiet:   cfg.Quiet,
		NoColor: cfg.NoColor,
	}
	var pipeErr error
	if cfg.LogFile != "" {
		pipe, pipeErr = telemetry.OpenLogPipe(cfg.LogFile)
		if pipeErr != nil {
			logOpts.LogFile = cfg.LogFile
		}
	}
	closer, err := telemetry.SetupLogger(logOpts)
	if err != nil {
		pipe.Close()
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if pipe != nil {
		// Teardown errors must not alter the run's exit code.
		defer func() {
			if err := pipe.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "log pipe teardown: %v\n", err)
			}
		}()
	} else if pipeErr != nil {
		log.Warn().Err(pipeErr).Msg("Log pipe unavailable, child process output will not reach the log file")
	}

	// Step 2: identity.
	id, err := distro.Resolve(platform.Probe(), "/")
	if err != nil {
		return lifecycle.NewUnsupportedPlatformError("platform identification failed", err)
	}
	log.Info().
		Str("distro", id.String()).
		Str("codename", id.Codename).
		Str("mode", cfg.Mode.String()).
		Msg("Bootstrapping salt")

	// Step 3: support policy gate.
	gate, err := policy.NewGate(ctx)
	if err != nil {
		return fmt.Errorf("failed to load support policy: %w", err)
	}
	violations, err := gate.Check(ctx, id, cfg.Mode)
	if err != nil {
		return fmt.Errorf("failed to evaluate support policy: %w", err)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			log.Error().Str("policy", v.Policy).Msg(v.Message)
		}
		return lifecycle.NewEndOfLifeError(violations[0].Message, nil)
	}

	// Step 4: handler catalog.
	env, err := handlers.NewEnv(cfg, id)
	if err != nil {
		return err
	}
	reg, err := handlers.Build(env)
	if err != nil {
		return fmt.Errorf("failed to build handler catalog: %w", err)
	}

	// Step 5: run infrastructure. Journal and tracer failures degrade
	// the run, they do not abort it.
	opts := []lifecycle.Option{}

	metrics := telemetry.NewMetrics()
	opts = append(opts, lifecycle.WithMetrics(metrics))

	if cfg.DataDir != "" {
		jnl, err := journal.Open(ctx, filepath.Join(cfg.DataDir, "saltboot.db"))
		if err != nil {
			log.Warn().Err(err).Msg("Run journal unavailable")
		} else {
			defer jnl.Close()
			opts = append(opts, lifecycle.WithJournal(jnl))
		}
	}

	tracer, err := telemetry.NewTracer(telemetry.TracerOptions{
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       cfg.Insecure,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Trace export unavailable")
	} else {
		defer tracer.Shutdown(context.Background())
		opts = append(opts, lifecycle.WithTracer(tracer))
	}

	if cfg.Mode.Channel == dispatch.ChannelGit {
		opts = append(opts, lifecycle.WithSource(func(ctx context.Context) error {
			_, err := gitsource.Ensure(ctx, gitsource.Options{
				URL:          cfg.GitURL,
				Rev:          cfg.Mode.Rev,
				Dir:          env.SourceDir,
				ForceShallow: cfg.ForceShallow,
			})
			return err
		}))
	}

	// Step 6: execute and export metrics regardless of the outcome.
	runErr := func() error {
		_, err := lifecycle.New(cfg, id, reg, opts...).Execute(ctx)
		return err
	}()

	if cfg.DataDir != "" {
		if err := metrics.WriteTextfile(filepath.Join(cfg.DataDir, "saltboot.prom")); err != nil {
			log.Warn().Err(err).Msg("Failed to write metrics textfile")
		}
	}
	return runErr
}
