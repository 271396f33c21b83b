package main

import (
	"context"
	"io"
	"net/http"

	"github.com/spf13/pflag"

	"github.com/kavehtehrani/cfspeed-install/internal/binary"
	"github.com/kavehtehrani/cfspeed-install/internal/config"
	"github.com/kavehtehrani/cfspeed-install/internal/logging"
	"github.com/kavehtehrani/cfspeed-install/internal/platform"
	"github.com/kavehtehrani/cfspeed-install/internal/release"
)

// app is the wired installer for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.ZapLogger
	manager *binary.Manager
}

// loadConfig resolves the effective configuration. Warnings raised while
// reading the config file go to stderr before the configured logger exists.
func loadConfig(ctx context.Context, flags *pflag.FlagSet, configFile string, stderr io.Writer) (*config.Config, error) {
	bootstrap := logging.New(logging.Options{Level: "warn", Output: stderr})
	defer bootstrap.Close()

	return config.Load(ctx, config.LoadOptions{
		Flags:      flags,
		ConfigFile: configFile,
		Detector:   platform.NewDetector(),
		Logger:     bootstrap,
	})
}

func newApp(ctx context.Context, flags *pflag.FlagSet, configFile string, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(ctx, flags, configFile, stderr)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Output: stderr,
	})

	userAgent := "cfspeed-install/" + Version
	owner, repo := cfg.RepoParts()
	client := release.NewClient(
		release.WithBaseURL(cfg.APIURL),
		release.WithRepo(owner, repo),
		release.WithToken(cfg.GitHubToken),
		release.WithUserAgent(userAgent),
		release.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	detector := platform.NewDetector()
	if cfg.HasPlatformOverride() {
		logger.Debug("using platform override", "os", cfg.OS, "arch", cfg.Arch)
		detector = platform.NewStaticDetector(cfg.OS, cfg.Arch)
	}

	manager, err := binary.NewManager(binary.Config{
		InstallDir: cfg.InstallDir,
		TempDir:    cfg.TempDir,
		BaseURL:    cfg.BaseURL,
		Detector:   detector,
		Versions:   release.NewResolver(client, logger),
		Downloader: binary.NewDownloader(
			binary.WithUserAgent(userAgent),
			binary.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		),
		Logger: logger,
	})
	if err != nil {
		logger.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, manager: manager}, nil
}

// Close flushes the logger.
func (a *app) Close() error {
	return a.logger.Close()
}
