// Package config loads the installer configuration from flags, environment
// variables and an optional sandboxed Lua file.
//
// # Overview
//
// Settings are merged with viper. Precedence, highest first:
//
//  1. command-line flags the user changed
//  2. CLOUDFLARE_SPEED_CLI_* environment variables (and GITHUB_TOKEN)
//  3. the Lua config file
//  4. built-in defaults
//
// The config file lives at $XDG_CONFIG_HOME/cfspeed-install/install.lua
// (~/.config when XDG_CONFIG_HOME is unset) or wherever --config points.
// A missing default file is not an error; a missing explicit one is.
//
// # Lua Schema
//
// The file assigns a single global table:
//
//	install = {
//	    version     = "v0.1.0",
//	    install_dir = "~/bin",
//	    timeout     = "2m",          -- or a number of seconds
//	    temp_dir    = platform.when(platform.is_macos, "/private/tmp"),
//	}
//
// Every field is optional. Unknown fields and wrong types are a ParseError,
// so a typo never silently falls back to a default. The read-only platform
// table (see internal/platform) is available for conditionals.
//
// # Security Model
//
// User Lua code runs in a restricted sandbox that prevents:
//   - System command execution (os.execute, os.exit, etc.)
//   - Filesystem access (io.open, io.popen, etc.)
//   - External code loading (require, dofile, loadfile, load)
//   - Metatable and raw access (setmetatable, rawset, etc.)
//
// Resource limits:
//   - Config size: Maximum 1MB
//   - Parse timeout: 5 seconds unless the context sets a deadline
//   - Call stack depth: 256 levels
//
// Hardcoded GitHub tokens in the file are reported as warnings, and the
// generator never writes a token back out.
//
// # Usage
//
//	cfg, err := config.Load(ctx, config.LoadOptions{
//	    Flags:    cmd.Flags(),
//	    Detector: platform.NewDetector(),
//	})
//
// # Error Types
//
//	type ParseError struct {
//	    File    string  // Config file, if any
//	    Message string  // User-friendly message
//	    Detail  string  // Technical details
//	}
//
//	type ValidationError struct {
//	    Field   string  // Key that failed validation
//	    Message string  // Error description
//	}
package config
