package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InPath reports whether dir is one of the entries of pathEnv (a
// PATH-style list). Entries are compared after cleaning and, where they
// exist, after resolving symlinks.
func InPath(pathEnv, dir string) bool {
	want := canonicalDir(dir)
	for _, entry := range filepath.SplitList(pathEnv) {
		if entry == "" {
			continue
		}
		if canonicalDir(entry) == want {
			return true
		}
	}
	return false
}

func canonicalDir(dir string) string {
	cleaned := filepath.Clean(dir)
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		return resolved
	}
	return cleaned
}

// NewPathHint builds the line that adds dir to PATH for shell. Unknown
// shells get a POSIX export line and no RC file.
func NewPathHint(shell ShellType, dir string) *PathHint {
	display := homeRelative(dir)

	hint := &PathHint{Shell: shell}
	switch shell {
	case ShellFish:
		hint.Line = fmt.Sprintf("fish_add_path %s", quoteIfNeeded(display))
	default:
		hint.Line = fmt.Sprintf(`export PATH="%s:$PATH"`, display)
	}

	if rc, err := GetRCFilePath(shell); err == nil {
		hint.RCFile = rc
	}
	return hint
}

// homeRelative rewrites a path under the home directory as $HOME/...,
// which both POSIX shells and fish expand.
func homeRelative(dir string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return dir
	}

	rel, err := filepath.Rel(home, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return dir
	}
	return "$HOME/" + filepath.ToSlash(rel)
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
