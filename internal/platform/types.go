// Package platform resolves the host's kernel name and machine architecture
// into the target triple used to name cloudflare-speed-cli release artifacts.
//
// Resolution is a fixed lookup table. Anything outside the table is a
// ClassificationError naming the literal value; there is no best-guess
// fallback, because a wrong triple silently fetches a binary that cannot run.
// Host values are read with gopsutil, and the resolved platform can be
// injected into a Lua state as a read-only table for config files.
package platform

import "context"

// OSKind is the operating-system half of a target triple.
type OSKind int

const (
	// OSUnknown is the zero value and never returned by Resolve.
	OSUnknown OSKind = iota
	// LinuxMusl is any Linux kernel; releases are statically linked against musl.
	LinuxMusl
	// MacOS is a Darwin kernel.
	MacOS
)

// String returns the vendor spelling used in artifact names.
func (o OSKind) String() string {
	switch o {
	case LinuxMusl:
		return "unknown-linux-musl"
	case MacOS:
		return "apple-darwin"
	default:
		return "unknown"
	}
}

// ArchKind is the CPU-architecture half of a target triple.
type ArchKind int

const (
	// ArchUnknown is the zero value and never returned by Resolve.
	ArchUnknown ArchKind = iota
	// X86_64 covers x86_64 and amd64.
	X86_64
	// Aarch64 covers aarch64 and arm64.
	Aarch64
)

// String returns the vendor spelling used in artifact names.
func (a ArchKind) String() string {
	switch a {
	case X86_64:
		return "x86_64"
	case Aarch64:
		return "aarch64"
	default:
		return "unknown"
	}
}

// Triple identifies which prebuilt artifact matches a machine.
type Triple struct {
	OS   OSKind
	Arch ArchKind
}

// String renders the triple as "{arch}-{os}", e.g. "x86_64-unknown-linux-musl".
func (t Triple) String() string {
	return t.Arch.String() + "-" + t.OS.String()
}

// IsZero reports whether the triple was never resolved.
func (t Triple) IsZero() bool {
	return t.OS == OSUnknown && t.Arch == ArchUnknown
}

// Info contains the raw values reported by the host.
type Info struct {
	Kernel          string // kernel name, e.g. "linux", "darwin"
	Machine         string // machine architecture, e.g. "x86_64", "arm64"
	Platform        string // distro ID on Linux, e.g. "alpine" (may be empty)
	PlatformVersion string // distro or macOS version (may be empty)
}

// Triple resolves the reported kernel and machine into a Triple.
func (i *Info) Triple() (Triple, error) {
	return Resolve(i.Kernel, i.Machine)
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
