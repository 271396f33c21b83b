package config

import "time"

// Configuration keys. The same names are used as viper keys, as fields of
// the Lua install table and, upper-cased with EnvPrefix, as env vars.
const (
	KeyVersion     = "version"
	KeyInstallDir  = "install_dir"
	KeyBaseURL     = "base_url"
	KeyAPIURL      = "api_url"
	KeyRepo        = "repo"
	KeyTempDir     = "temp_dir"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log_level"
	KeyLogFile     = "log_file"
	KeyGitHubToken = "github_token"
	KeyOS          = "os"
	KeyArch        = "arch"
)

const (
	// AppName names the config directory.
	AppName = "cfspeed-install"
	// ConfigFileName is the default config file inside the config directory.
	ConfigFileName = "install.lua"
	// EnvPrefix prefixes every installer environment variable.
	EnvPrefix = "CLOUDFLARE_SPEED_CLI"

	// luaGlobalInstall is the global the config file must assign.
	luaGlobalInstall = "install"
)

// Resource limits for config parsing
const (
	MaxConfigSize       = 1 << 20 // 1MB
	DefaultParseTimeout = 5 * time.Second

	luaCallStackSize = 256
	luaRegistrySize  = 8 * 1024
)
