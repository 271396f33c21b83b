package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect reads the kernel name and machine architecture from gopsutil.
//
// If gopsutil cannot answer (restricted /proc, sandboxed macOS), the values
// fall back to runtime.GOOS and runtime.GOARCH, which name the same things
// for every platform in the resolution table. A cancelled context is a hard
// failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		Kernel:  runtime.GOOS,
		Machine: runtime.GOARCH,
	}

	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	if hostInfo.OS != "" {
		info.Kernel = hostInfo.OS
	}
	if hostInfo.KernelArch != "" {
		info.Machine = hostInfo.KernelArch
	}
	info.Platform = normalizeKey(hostInfo.Platform)
	info.PlatformVersion = normalizeKey(hostInfo.PlatformVersion)

	return info, nil
}

// StaticDetector reports fixed kernel and machine values. It backs the
// --os and --arch overrides, so the values still go through Resolve.
type StaticDetector struct {
	Kernel  string
	Machine string
}

// NewStaticDetector creates a detector that always reports kernel and machine.
func NewStaticDetector(kernel, machine string) Detector {
	return &StaticDetector{Kernel: kernel, Machine: machine}
}

// Detect returns the configured values.
func (d *StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", err)
	}
	return &Info{Kernel: d.Kernel, Machine: d.Machine}, nil
}
