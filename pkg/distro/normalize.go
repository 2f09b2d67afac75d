package distro

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/platform"
)

var (
	// ErrUnsupportedKernel is returned when the host kernel family is
	// not one saltboot knows how to bootstrap. No handler dispatch is
	// attempted after this error.
	ErrUnsupportedKernel = errors.New("unsupported kernel family")

	// ErrUnknownDistribution is returned when a Linux host carries no
	// usable release metadata.
	ErrUnknownDistribution = errors.New("unable to determine distribution")
)

// Resolve turns raw probe output into the canonical Identity. On Linux
// the source precedence is the structured os-release metadata, then
// the lsb-release file, then the sorted marker file scan; the first
// source yielding both a name and a parseable version wins, and a
// name alone is kept as a fallback for rolling releases. Derivative
// translation is applied exactly once here, so the returned Identity
// is final.
func Resolve(sys platform.RawSystem, root string) (Identity, error) {
	kernel := strings.ToLower(strings.TrimSpace(sys.Kernel))
	id := Identity{Kernel: kernel}

	switch kernel {
	case "linux":
		name, version := linuxNameVersion(root)
		if name == "" {
			return Identity{}, ErrUnknownDistribution
		}
		id.Name = name
		id.Version = version
	case "freebsd", "openbsd", "netbsd", "dragonfly":
		id.Name = sys.Kernel
		id.Version = ParseVersion(sys.KernelRelease)
	case "sunos":
		id.Name = "Solaris"
		id.Version = ParseVersion(sys.KernelRelease)
	case "darwin":
		id.Name = "macOS"
		id.Version = ParseVersion(sys.KernelRelease)
	default:
		return Identity{}, fmt.Errorf("%w: %q", ErrUnsupportedKernel, sys.Kernel)
	}

	id.ID = NormalizeName(id.Name)
	if id.ID == "" {
		return Identity{}, ErrUnknownDistribution
	}
	if id.ID == "debian" && id.Version.Minor == "" {
		id.Version = debianPointVersion(root, id.Version)
	}
	id.Codename = CodenameFor(id.ID, id.Version)

	raw := id
	id = Translate(id)
	if id.ID != raw.ID {
		log.Info().
			Str("derivative", raw.String()).
			Str("base", id.String()).
			Msg("Translated derivative distribution to its base")
	}

	log.Debug().
		Str("kernel", id.Kernel).
		Str("name", id.Name).
		Str("id", id.ID).
		Str("version", id.Version.String()).
		Str("codename", id.Codename).
		Msg("Resolved host identity")
	return id, nil
}

func linuxNameVersion(root string) (string, Version) {
	var fallback string

	if osr, ok := platform.ReadOSRelease(root); ok {
		name := osr["NAME"]
		if name == "" {
			name = osr["ID"]
		}
		if version := ParseVersion(osr["VERSION_ID"]); name != "" && !version.IsZero() {
			return name, version
		}
		fallback = name
	}

	if lsb, ok := platform.ReadLSBRelease(root); ok {
		name := lsb["DISTRIB_ID"]
		if version := ParseVersion(lsb["DISTRIB_RELEASE"]); name != "" && !version.IsZero() {
			return name, version
		}
		if fallback == "" {
			fallback = name
		}
	}

	for _, marker := range platform.ReleaseFiles(root) {
		// The structured sources above already consumed these two.
		if marker == "os-release" || marker == "lsb-release" {
			continue
		}
		name, text, ok := platform.ReadReleaseFile(root, marker)
		if !ok {
			continue
		}
		if version := ParseVersion(text); name != "" && !version.IsZero() {
			return name, version
		}
		if fallback == "" {
			fallback = name
		}
	}

	// Rolling releases legitimately carry a name and no version.
	return fallback, Version{}
}

// debianPointVersion backfills the minor component from
// /etc/debian_version, which records the point release ("12.4") while
// os-release reports only the major.
func debianPointVersion(root string, v Version) Version {
	_, text, ok := platform.ReadReleaseFile(root, "debian_version")
	if !ok {
		return v
	}
	point := ParseVersion(text)
	if point.Major == v.Major && point.Minor != "" {
		return point
	}
	return v
}
