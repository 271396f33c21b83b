package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kavehtehrani/cfspeed-install/internal/logging"
	"github.com/kavehtehrani/cfspeed-install/internal/platform"
)

// keys lists every configuration key.
var keys = []string{
	KeyVersion, KeyInstallDir, KeyBaseURL, KeyAPIURL, KeyRepo, KeyTempDir,
	KeyTimeout, KeyLogLevel, KeyLogFile, KeyGitHubToken, KeyOS, KeyArch,
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// Flags holds command-line flags named after the keys with dashes
	// (install-dir for install_dir). Only flags the user changed override
	// lower layers.
	Flags *pflag.FlagSet

	// ConfigFile is an explicit Lua config path. It must exist.
	ConfigFile string

	// ConfigDir replaces the default config directory.
	ConfigDir string

	// Detector feeds the platform table of the Lua config. An os/arch
	// override from flags or environment replaces it.
	Detector platform.Detector

	Logger logging.Logger
}

// Load builds the effective configuration. Precedence, highest first:
// changed flags, environment, the Lua config file, defaults.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	logger := logging.OrNop(opts.Logger)
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyVersion, defaults.Version)
	v.SetDefault(KeyInstallDir, defaults.InstallDir)
	v.SetDefault(KeyBaseURL, defaults.BaseURL)
	v.SetDefault(KeyAPIURL, defaults.APIURL)
	v.SetDefault(KeyRepo, defaults.Repo)
	v.SetDefault(KeyTempDir, defaults.TempDir)
	v.SetDefault(KeyTimeout, defaults.Timeout)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogFile, defaults.LogFile)
	v.SetDefault(KeyGitHubToken, defaults.GitHubToken)
	v.SetDefault(KeyOS, defaults.OS)
	v.SetDefault(KeyArch, defaults.Arch)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// The conventional GITHUB_TOKEN works too; the prefixed name wins.
	if err := v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	configPath, err := resolveConfigPath(opts)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		detector := overrideDetector(v, opts.Detector)
		if err := loadLuaIntoViper(ctx, v, configPath, NewParser(detector), logger); err != nil {
			return nil, err
		}
		logger.Debug("loaded config file", "path", configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ConfigFile = configPath

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/cfspeed-install/install.lua,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// resolveConfigPath returns the file to load, or "" when there is none.
// An explicit file must exist; the default one is optional.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		return opts.ConfigFile, nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = configDir(); err != nil {
			// No home directory means no default config file
			return "", nil
		}
	}

	path := filepath.Join(dir, ConfigFileName)
	if !fileExists(path) {
		return "", nil
	}
	return path, nil
}

// loadLuaIntoViper evaluates the Lua file and merges its values as the
// config layer.
func loadLuaIntoViper(ctx context.Context, v *viper.Viper, path string, parser *Parser, logger logging.Logger) error {
	code, err := readConfigFile(path)
	if err != nil {
		return err
	}

	for _, finding := range DetectSensitiveData(code) {
		logger.Warn("possible hardcoded token in config file; use GITHUB_TOKEN instead",
			"file", path, "line", finding.Line, "kind", finding.PatternName, "preview", finding.Preview)
	}

	values, err := parser.ParseString(ctx, code)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return err
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("merge config file %s: %w", path, err)
	}
	return nil
}

// overrideDetector returns a StaticDetector when the flag and environment
// layers set both os and arch, so the config file sees the platform being
// installed rather than the host. Otherwise it returns fallback.
func overrideDetector(v *viper.Viper, fallback platform.Detector) platform.Detector {
	osName, arch := v.GetString(KeyOS), v.GetString(KeyArch)
	if osName == "" || arch == "" {
		return fallback
	}
	return platform.NewStaticDetector(osName, arch)
}

// bindFlags binds each key to the flag of the same name with dashes.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range keys {
		flag := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

func (c *Config) expandPaths() error {
	for _, field := range []*string{&c.InstallDir, &c.TempDir, &c.LogFile} {
		expanded, err := ExpandHome(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
