package config

import (
	"bytes"
	"fmt"
	"strings"
)

// Generator renders a Config as a Lua config file that Parser accepts.
type Generator struct {
	indent string // Indentation string (default: two spaces)
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ", // Two spaces
	}
}

// Generate generates Lua code from a Config struct. Empty fields are
// omitted and the GitHub token is never written; when one is configured a
// comment says so.
func (g *Generator) Generate(config *Config) string {
	var buf bytes.Buffer

	buf.WriteString("-- cfspeed-install configuration\n")
	if config.ConfigFile != "" {
		buf.WriteString("-- Loaded from: ")
		buf.WriteString(config.ConfigFile)
		buf.WriteString("\n")
	}
	buf.WriteString("\n")

	buf.WriteString(luaGlobalInstall + " = {\n")

	g.writeString(&buf, KeyVersion, config.Version)
	g.writeString(&buf, KeyInstallDir, config.InstallDir)
	g.writeString(&buf, KeyBaseURL, config.BaseURL)
	g.writeString(&buf, KeyAPIURL, config.APIURL)
	g.writeString(&buf, KeyRepo, config.Repo)
	g.writeString(&buf, KeyTempDir, config.TempDir)
	if config.Timeout > 0 {
		g.writeString(&buf, KeyTimeout, config.Timeout.String())
	}
	g.writeString(&buf, KeyLogLevel, config.LogLevel)
	g.writeString(&buf, KeyLogFile, config.LogFile)
	g.writeString(&buf, KeyOS, config.OS)
	g.writeString(&buf, KeyArch, config.Arch)

	if config.GitHubToken != "" {
		buf.WriteString(g.indent)
		fmt.Fprintf(&buf, "-- %s is set (redacted); prefer the GITHUB_TOKEN environment variable\n", KeyGitHubToken)
	}

	buf.WriteString("}\n")

	return buf.String()
}

func (g *Generator) writeString(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	buf.WriteString(g.indent)
	buf.WriteString(key)
	buf.WriteString(" = ")
	buf.WriteString(g.quoteLuaString(value))
	buf.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	// Use double quotes and escape special characters
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"") // Escape double quotes
	s = strings.ReplaceAll(s, "\n", "\\n")  // Escape newlines
	s = strings.ReplaceAll(s, "\r", "\\r")  // Escape carriage returns
	s = strings.ReplaceAll(s, "\t", "\\t")  // Escape tabs
	return "\"" + s + "\""
}
