// Package platform reads raw identity signals from the host: kernel
// identity via uname and distribution metadata from the conventional
// release files. Probes never fail; missing information comes back as
// an explicit empty string for the normalizer to interpret.
package platform

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// RawSystem holds the uname-level identity of the host, untouched by
// any normalization.
type RawSystem struct {
	Kernel        string // sysname, e.g. "Linux"
	KernelRelease string // e.g. "5.15.0-91-generic" or "13.2-RELEASE"
	KernelVersion string
	Machine       string // CPU architecture, e.g. "x86_64"
	Hostname      string
}

// Probe gathers the raw system identity. It never fails: when the
// uname syscall is unavailable the Go runtime's view is used instead,
// and anything else missing stays empty.
func Probe() RawSystem {
	sys := RawSystem{}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		sys.Kernel = unix.ByteSliceToString(uts.Sysname[:])
		sys.KernelRelease = unix.ByteSliceToString(uts.Release[:])
		sys.KernelVersion = unix.ByteSliceToString(uts.Version[:])
		sys.Machine = unix.ByteSliceToString(uts.Machine[:])
	} else {
		sys.Kernel = runtime.GOOS
		sys.Machine = runtime.GOARCH
	}

	if host, err := os.Hostname(); err == nil {
		sys.Hostname = host
	}
	return sys
}
