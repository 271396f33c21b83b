package binary

import (
	"context"
	"fmt"
	"time"

	"github.com/kavehtehrani/cfspeed-install/internal/logging"
	"github.com/kavehtehrani/cfspeed-install/internal/platform"
)

// downloadsDir holds the archive and sidecar inside the workspace; the
// archive is unpacked at the workspace root next to it.
const downloadsDir = "downloads"

// VersionResolver picks the release version. An empty override means latest.
type VersionResolver interface {
	Resolve(ctx context.Context, override string) (string, error)
}

// Config holds configuration for the binary manager
type Config struct {
	// InstallDir receives the binary (e.g. ~/.local/bin). Required.
	InstallDir string
	// TempDir is the parent of the per-run workspace. Empty means os.TempDir().
	TempDir string
	// BaseURL is the release download root. Empty means DefaultBaseURL.
	BaseURL string
	// PackageName and BinaryName default to cloudflare-speed-cli.
	PackageName string
	BinaryName  string

	// Detector reports the host platform. Required.
	Detector platform.Detector
	// Versions resolves the release version. Required.
	Versions VersionResolver
	// Downloader defaults to NewDownloader().
	Downloader *Downloader
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Manager orchestrates binary download, verification, and installation
type Manager struct {
	tempDir     string
	baseURL     string
	packageName string
	binaryName  string

	detector   platform.Detector
	versions   VersionResolver
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	installer  *Installer
	logger     logging.Logger
}

// Request carries per-run input.
type Request struct {
	// Version pins the release. Empty means the latest published release.
	Version string
}

// Plan is everything known before the first download.
type Plan struct {
	Triple      platform.Triple
	Version     string
	Artifact    *Artifact
	Destination string
}

// Result describes a completed install.
type Result struct {
	Plan
	Path         string
	Verification *Verification
	ArchiveSize  int64
	Replaced     bool
	Duration     time.Duration
}

// NewManager creates a new binary manager
func NewManager(config Config) (*Manager, error) {
	if config.InstallDir == "" {
		return nil, fmt.Errorf("InstallDir is required")
	}
	if config.Detector == nil {
		return nil, fmt.Errorf("Detector is required")
	}
	if config.Versions == nil {
		return nil, fmt.Errorf("Versions is required")
	}

	m := &Manager{
		tempDir:     config.TempDir,
		baseURL:     valueOr(config.BaseURL, DefaultBaseURL),
		packageName: valueOr(config.PackageName, DefaultPackageName),
		binaryName:  valueOr(config.BinaryName, DefaultBinaryName),
		detector:    config.Detector,
		versions:    config.Versions,
		downloader:  config.Downloader,
		verifier:    NewVerifier(),
		extractor:   NewExtractor(),
		logger:      logging.OrNop(config.Logger),
	}
	if m.downloader == nil {
		m.downloader = NewDownloader()
	}
	m.installer = NewInstaller(config.InstallDir, m.binaryName)

	return m, nil
}

// Destination returns the path the binary is installed to.
func (m *Manager) Destination() string {
	return m.installer.Destination()
}

// Plan resolves the platform and version and derives the artifact without
// downloading anything.
func (m *Manager) Plan(ctx context.Context, req Request) (*Plan, error) {
	info, err := m.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	triple, err := info.Triple()
	if err != nil {
		return nil, err
	}
	m.logger.Debug("resolved platform", "kernel", info.Kernel, "machine", info.Machine, "triple", triple.String())

	version, err := m.versions.Resolve(ctx, req.Version)
	if err != nil {
		return nil, err
	}

	artifact, err := NewArtifact(m.binaryName, m.packageName, version, triple, m.baseURL)
	if err != nil {
		return nil, fmt.Errorf("construct artifact: %w", err)
	}

	return &Plan{
		Triple:      triple,
		Version:     version,
		Artifact:    artifact,
		Destination: m.installer.Destination(),
	}, nil
}

// Run performs a full install. Stages run in order and the first failure
// aborts the run. The workspace is removed before Run returns, whatever
// the outcome, including cancellation of ctx.
func (m *Manager) Run(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()

	plan, err := m.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	artifact := plan.Artifact

	ws, err := NewWorkspace(m.tempDir)
	if err != nil {
		return nil, err
	}
	log := &runLogger{Logger: m.logger, runID: ws.RunID()}
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			log.Warn("workspace cleanup failed", "path", ws.Path(), "error", rmErr)
		} else {
			log.Debug("workspace removed", "path", ws.Path())
		}
	}()
	log.Debug("workspace created", "path", ws.Path())

	archivePath := ws.Join(downloadsDir, artifact.ArchiveName)
	log.Info("downloading archive", "url", artifact.ArchiveURL)
	size, err := m.downloader.DownloadToFile(ctx, artifact.ArchiveURL, archivePath)
	if err != nil {
		return nil, err
	}

	digestPath := ws.Join(downloadsDir, artifact.DigestName())
	log.Info("downloading digest", "url", artifact.DigestURL)
	if _, err := m.downloader.DownloadToFile(ctx, artifact.DigestURL, digestPath); err != nil {
		return nil, err
	}

	verification, err := m.verifier.Verify(archivePath, digestPath)
	if err != nil {
		return nil, err
	}
	log.Info("archive verified", "algorithm", verification.Algorithm, "digest", verification.Digest)

	if err := m.extractor.Extract(ctx, archivePath, ws.Path()); err != nil {
		return nil, err
	}

	binaryPath, err := ws.LocateBinary(artifact)
	if err != nil {
		return nil, err
	}
	log.Debug("located binary", "path", binaryPath)

	replaced, err := m.installer.IsInstalled()
	if err != nil {
		log.Debug("could not inspect existing install", "error", err)
	}

	dest, err := m.installer.Install(binaryPath)
	if err != nil {
		return nil, err
	}
	log.Info("installed", "path", dest, "version", plan.Version)

	plan.Destination = dest
	return &Result{
		Plan:         *plan,
		Path:         dest,
		Verification: verification,
		ArchiveSize:  size,
		Replaced:     replaced,
		Duration:     time.Since(start),
	}, nil
}

// runLogger tags every record with the workspace run ID.
type runLogger struct {
	logging.Logger
	runID string
}

func (l *runLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, append(keysAndValues, "run_id", l.runID)...)
}

func (l *runLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, append(keysAndValues, "run_id", l.runID)...)
}

func (l *runLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, append(keysAndValues, "run_id", l.runID)...)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
