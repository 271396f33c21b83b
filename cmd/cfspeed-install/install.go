package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kavehtehrani/cfspeed-install/internal/binary"
	"github.com/kavehtehrani/cfspeed-install/internal/shell"
)

// installParams carries the dependencies of runInstall so tests can supply
// writers and a PATH without touching the process environment.
type installParams struct {
	stdout  io.Writer
	manager *binary.Manager
	version string
	// pathEnv is the PATH the hint is checked against.
	pathEnv string
	// shell picks the syntax of the PATH hint.
	shell shell.ShellType
}

func newInstallParams(ctx context.Context, stdout io.Writer, a *app) installParams {
	return installParams{
		stdout:  stdout,
		manager: a.manager,
		version: a.cfg.Version,
		pathEnv: os.Getenv("PATH"),
		shell:   shell.DetectShell(ctx).Shell,
	}
}

// runInstall performs the install and reports the outcome on stdout.
func runInstall(ctx context.Context, p installParams) error {
	target := "latest release"
	if p.version != "" {
		target = p.version
	}
	fmt.Fprintln(p.stdout, TitleStyle.Render(fmt.Sprintf("Installing %s (%s)", binary.DefaultBinaryName, target)))

	result, err := p.manager.Run(ctx, binary.Request{Version: p.version})
	if err != nil {
		return err
	}

	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("✓ Installed %s %s to %s",
		result.Artifact.BinaryName, result.Version, result.Path)))
	fmt.Fprintln(p.stdout, SubtitleStyle.Render(fmt.Sprintf("  %s, %s, %s %s, took %s",
		result.Triple,
		humanize.Bytes(uint64(result.ArchiveSize)),
		result.Verification.Algorithm,
		shortDigest(result.Verification.Digest),
		result.Duration.Round(time.Millisecond))))
	if result.Replaced {
		fmt.Fprintln(p.stdout, SubtitleStyle.Render("  replaced the previously installed binary"))
	}

	printPathHint(p.stdout, filepath.Dir(result.Path), p.pathEnv, p.shell)
	return nil
}

// printPathHint tells the user how to reach dir when it is not on PATH.
func printPathHint(w io.Writer, dir, pathEnv string, sh shell.ShellType) {
	if shell.InPath(pathEnv, dir) {
		return
	}

	hint := shell.NewPathHint(sh, dir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%s is not on your PATH.", dir)))
	if hint.RCFile != "" {
		fmt.Fprintf(w, "Add this line to %s:\n", hint.RCFile)
	} else {
		fmt.Fprintln(w, "Add this line to your shell startup file:")
	}
	fmt.Fprintf(w, "  %s\n", CmdStyle.Render(hint.Line))
}

func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
