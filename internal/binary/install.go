package binary

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExecutableMode is the permission set on installed binaries (rwxr-xr-x).
const ExecutableMode os.FileMode = 0755

// Installer places a located binary into the destination directory.
type Installer struct {
	dir        string
	binaryName string
}

// NewInstaller creates an installer writing {dir}/{binaryName}.
func NewInstaller(dir, binaryName string) *Installer {
	return &Installer{dir: dir, binaryName: binaryName}
}

// Destination returns the final path of the installed binary.
func (i *Installer) Destination() string {
	return filepath.Join(i.dir, i.binaryName)
}

// IsInstalled checks if a binary is already installed and executable
func (i *Installer) IsInstalled() (bool, error) {
	info, err := os.Stat(i.Destination())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	return info.Mode().Perm()&0111 != 0, nil
}

// Install copies src to the destination with ExecutableMode, creating the
// directory if needed and replacing any existing file. The copy is staged
// next to the destination and renamed, so the destination path only ever
// holds a complete binary. It returns the absolute destination path.
func (i *Installer) Install(src string) (string, error) {
	dest, err := filepath.Abs(i.Destination())
	if err != nil {
		return "", &InstallError{Path: i.Destination(), Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("create install dir: %w", err)}
	}

	in, err := os.Open(src)
	if err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("open source: %w", err)}
	}
	defer in.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "."+i.binaryName+".tmp-*")
	if err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, in); err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("copy binary: %w", err)}
	}

	// CreateTemp uses 0600; chmod explicitly so umask does not apply
	if err := tmpFile.Chmod(ExecutableMode); err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("set executable: %w", err)}
	}

	if err := tmpFile.Close(); err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("close temp file: %w", err)}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return "", &InstallError{Path: dest, Err: fmt.Errorf("replace binary: %w", err)}
	}

	cleanupNeeded = false
	return dest, nil
}
