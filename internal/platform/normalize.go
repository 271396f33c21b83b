package platform

import (
	"sort"
	"strings"
)

const (
	fieldOS   = "operating system"
	fieldArch = "architecture"
)

// osTable maps kernel names (as printed by uname -s or runtime.GOOS) to OSKind.
var osTable = map[string]OSKind{
	"linux":  LinuxMusl,
	"darwin": MacOS,
}

// archTable maps machine names (as printed by uname -m or runtime.GOARCH) to ArchKind.
var archTable = map[string]ArchKind{
	"x86_64":  X86_64,
	"amd64":   X86_64,
	"aarch64": Aarch64,
	"arm64":   Aarch64,
}

// Resolve maps a kernel name and a machine architecture to a Triple.
// Matching is exact after lower-casing and trimming whitespace.
func Resolve(kernel, machine string) (Triple, error) {
	osKind, ok := osTable[normalizeKey(kernel)]
	if !ok {
		return Triple{}, &ClassificationError{
			Field:     fieldOS,
			Value:     kernel,
			Supported: sortedKeys(osTable),
		}
	}

	archKind, ok := archTable[normalizeKey(machine)]
	if !ok {
		return Triple{}, &ClassificationError{
			Field:     fieldArch,
			Value:     machine,
			Supported: sortedKeys(archTable),
		}
	}

	return Triple{OS: osKind, Arch: archKind}, nil
}

// normalizeKey lower-cases and trims a host-reported value.
func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func sortedKeys[V any](table map[string]V) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
