package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/kavehtehrani/cfspeed-install/internal/platform"
)

// stringFields are the install table fields holding plain strings.
var stringFields = map[string]bool{
	KeyVersion:     true,
	KeyInstallDir:  true,
	KeyBaseURL:     true,
	KeyAPIURL:      true,
	KeyRepo:        true,
	KeyTempDir:     true,
	KeyLogLevel:    true,
	KeyLogFile:     true,
	KeyGitHubToken: true,
	KeyOS:          true,
	KeyArch:        true,
}

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out of the Lua environment.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString parses a Lua config from a string. It returns the fields set
// in the global install table, keyed by config key. Fields that evaluate to
// nil (for example a platform.when that did not match) are absent.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (map[string]interface{}, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM(ctx)
	defer L.Close()

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		// An unsupported host still gets the raw kernel and machine
		triple, _ := info.Triple()
		if err := platform.InjectPlatformTable(L, info, triple); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{Message: "Lua execution aborted", Detail: ctxErr.Error(), Err: ctxErr}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractValues(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	File    string // Config file path, if parsed from a file
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
	Err     error  // Underlying cause, if any (e.g. context cancellation)
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// extractValues reads the global install table.
func extractValues(L *lua.LState) (map[string]interface{}, error) {
	global := L.GetGlobal(luaGlobalInstall)
	if global.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalInstall),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	values := make(map[string]interface{})
	var fieldErr error

	global.(*lua.LTable).ForEach(func(key, value lua.LValue) {
		if fieldErr != nil {
			return
		}

		name, ok := key.(lua.LString)
		if !ok {
			fieldErr = &ParseError{
				Message: "invalid install table",
				Detail:  fmt.Sprintf("unexpected %s key %s; use name = value fields", key.Type(), key.String()),
			}
			return
		}

		v, err := extractField(string(name), value)
		if err != nil {
			fieldErr = err
			return
		}
		values[string(name)] = v
	})

	if fieldErr != nil {
		return nil, fieldErr
	}
	return values, nil
}

func extractField(name string, value lua.LValue) (interface{}, error) {
	if name == KeyTimeout {
		return extractTimeout(value)
	}

	if !stringFields[name] {
		return nil, &ParseError{
			Message: "unknown field in install table",
			Detail:  fmt.Sprintf("%q (known fields: %s)", name, strings.Join(knownFields(), ", ")),
		}
	}

	str, ok := value.(lua.LString)
	if !ok {
		return nil, &ParseError{
			Message: "invalid field type",
			Detail:  fmt.Sprintf("%s: expected string, got %s", name, value.Type()),
		}
	}
	return string(str), nil
}

// extractTimeout accepts a Go duration string ("90s", "5m") or a number of
// seconds.
func extractTimeout(value lua.LValue) (time.Duration, error) {
	switch v := value.(type) {
	case lua.LString:
		d, err := time.ParseDuration(string(v))
		if err != nil {
			return 0, &ParseError{Message: "invalid timeout", Detail: err.Error(), Err: err}
		}
		return d, nil
	case lua.LNumber:
		return time.Duration(float64(v) * float64(time.Second)), nil
	default:
		return 0, &ParseError{
			Message: "invalid field type",
			Detail:  fmt.Sprintf("%s: expected duration string or seconds, got %s", KeyTimeout, value.Type()),
		}
	}
}

func knownFields() []string {
	fields := []string{KeyTimeout}
	for name := range stringFields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

func readConfigFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigSize {
		return "", &ParseError{File: path, Message: "config file too large", Detail: fmt.Sprintf("maximum is %d bytes", MaxConfigSize)}
	}
	return string(data), nil
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}

	prefix := parseErr.Message
	if parseErr.File != "" {
		prefix = parseErr.File + ": " + prefix
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", prefix, parseErr.Detail)
	}

	// Extract the most relevant part of the error
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", prefix, detail)
}
