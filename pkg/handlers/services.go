package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// systemd helpers shared by every family that boots with systemd.

func (e *Env) systemdEnable(ctx context.Context) error {
	for _, svc := range e.Cfg.Roles() {
		if err := e.Run.Run(ctx, "systemctl", "enable", svc); err != nil {
			return fmt.Errorf("failed to enable %s: %w", svc, err)
		}
	}
	return nil
}

func (e *Env) systemdRestart(ctx context.Context) error {
	if e.Cfg.NoStart {
		log.Info().Msg("Daemon start suppressed, leaving services stopped")
		return nil
	}
	for _, svc := range e.Cfg.Roles() {
		if err := e.Run.Run(ctx, "systemctl", "restart", svc); err != nil {
			return fmt.Errorf("failed to restart %s: %w", svc, err)
		}
	}
	return nil
}

// systemdCheck makes sure every selected service is enabled, enabling
// it when it is not.
func (e *Env) systemdCheck(ctx context.Context) error {
	for _, svc := range e.Cfg.Roles() {
		if err := e.Run.Quiet(ctx, "systemctl", "is-enabled", svc); err == nil {
			continue
		}
		log.Warn().Str("service", svc).Msg("Service not enabled, enabling it")
		if err := e.Run.Run(ctx, "systemctl", "enable", svc); err != nil {
			return fmt.Errorf("failed to enable %s: %w", svc, err)
		}
	}
	return nil
}

// OpenRC variants for Alpine.

func (e *Env) openrcEnable(ctx context.Context) error {
	for _, svc := range e.Cfg.Roles() {
		if err := e.Run.Run(ctx, "rc-update", "add", svc, "default"); err != nil {
			return fmt.Errorf("failed to enable %s: %w", svc, err)
		}
	}
	return nil
}

func (e *Env) openrcRestart(ctx context.Context) error {
	if e.Cfg.NoStart {
		log.Info().Msg("Daemon start suppressed, leaving services stopped")
		return nil
	}
	for _, svc := range e.Cfg.Roles() {
		if err := e.Run.Run(ctx, "rc-service", svc, "restart"); err != nil {
			return fmt.Errorf("failed to restart %s: %w", svc, err)
		}
	}
	return nil
}

// rc.d variants for FreeBSD. Services are enabled through sysrc and
// the rc script names use underscores.

func bsdServiceName(role string) string {
	return strings.ReplaceAll(role, "-", "_")
}

func (e *Env) bsdEnable(ctx context.Context) error {
	for _, svc := range e.Cfg.Roles() {
		name := bsdServiceName(svc)
		if err := e.Run.Run(ctx, "sysrc", name+"_enable=YES"); err != nil {
			return fmt.Errorf("failed to enable %s: %w", svc, err)
		}
	}
	return nil
}

func (e *Env) bsdRestart(ctx context.Context) error {
	if e.Cfg.NoStart {
		log.Info().Msg("Daemon start suppressed, leaving services stopped")
		return nil
	}
	for _, svc := range e.Cfg.Roles() {
		if err := e.Run.Run(ctx, "service", bsdServiceName(svc), "restart"); err != nil {
			return fmt.Errorf("failed to restart %s: %w", svc, err)
		}
	}
	return nil
}
