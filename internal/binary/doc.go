// Package binary downloads, verifies, unpacks and installs the
// cloudflare-speed-cli executable.
//
// # Security Model
//
// The installed binary is a network tool run by the user; a partial or
// tampered install is worse than no install. Every run therefore:
//   - Downloads only from the configured release host (GitHub by default)
//   - Verifies the archive against its SHA-256 sidecar before unpacking
//   - Rejects archive entries that escape the workspace
//   - Never places a file at the destination until verification and
//     extraction have both succeeded
//
// # Pipeline
//
// Manager.Run drives the stages strictly in order and aborts on the first
// failure. There are no retries and no mirrors; the user re-runs instead.
//
//  1. Resolve the platform triple and release version
//  2. Derive the Artifact (archive name, archive URL, digest URL)
//  3. Create a Workspace (removed on every exit path)
//  4. Download archive and digest sidecar
//  5. Verify the SHA-256 digest
//  6. Extract the archive
//  7. Locate the binary (nested package directory first, then archive root)
//  8. Install atomically into the destination directory with mode 0755
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    InstallDir: filepath.Join(home, ".local", "bin"),
//	    Detector:   platform.NewDetector(),
//	    Versions:   release.NewResolver(release.NewClient(), logger),
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := mgr.Run(ctx, binary.Request{Version: pinned})
//
// # Errors
//
// Each stage fails with its own type: RetrievalError, IntegrityError,
// ExtractionError, BinaryNotFoundError and InstallError. Each unwraps to a
// package sentinel (ErrRetrieval, ErrIntegrity, ...) for errors.Is checks.
package binary
