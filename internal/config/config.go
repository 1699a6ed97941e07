// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/orb-tui/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete orb configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Webhook endpoint configuration
	Webhook WebhookConfig `toml:"webhook" json:"webhook" yaml:"webhook"`

	// Session history storage
	Session SessionConfig `toml:"session" json:"session" yaml:"session"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui" yaml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log" yaml:"log"`
}

// WebhookConfig contains the answer endpoint settings.
type WebhookConfig struct {
	// URL receives POST {"query": "..."} requests
	URL string `toml:"url" json:"url" yaml:"url"`
	// Username for HTTP Basic authentication
	Username string `toml:"username" json:"username" yaml:"username"`
	// Password for HTTP Basic authentication
	Password string `toml:"password" json:"password" yaml:"password"`
	// TimeoutSecs bounds a single request (default 60)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
	// RateLimitPerMinute caps outgoing requests; 0 disables the limit
	RateLimitPerMinute int `toml:"rate_limit_per_minute" json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
}

// Timeout returns TimeoutSecs as a duration.
func (w WebhookConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSecs) * time.Second
}

// SessionConfig controls where conversation history lives.
type SessionConfig struct {
	// Backend is "sqlite", "file" or "memory"
	Backend string `toml:"backend" json:"backend" yaml:"backend"`
	// Path is the database file (sqlite) or directory (file); empty uses ~/.orb
	Path string `toml:"path" json:"path" yaml:"path"`
	// TTLHours is how long an idle session scope survives
	TTLHours int `toml:"ttl_hours" json:"ttl_hours" yaml:"ttl_hours"`
}

// TTL returns TTLHours as a duration.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	// ReduceMotion freezes the particle field and sphere
	ReduceMotion bool `toml:"reduce_motion" json:"reduce_motion" yaml:"reduce_motion"`
	// FPS is the animation frame rate
	FPS int `toml:"fps" json:"fps" yaml:"fps"`
	// ReportEmptyAnswers shows an error when the webhook answers with no text
	ReportEmptyAnswers bool `toml:"report_empty_answers" json:"report_empty_answers" yaml:"report_empty_answers"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error"
	Level string `toml:"level" json:"level" yaml:"level"`
	// Path is the log file; empty uses ~/.orb/orb.log
	Path string `toml:"path" json:"path" yaml:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Webhook: WebhookConfig{
			TimeoutSecs: 60,
		},
		Session: SessionConfig{
			Backend:  "sqlite",
			TTLHours: 24,
		},
		UI: UIConfig{
			Theme: "auto",
			FPS:   20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the orb configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ORB_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".orb"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

// ActivePath returns the first config file that exists, or the TOML path
// when none does.
func ActivePath() (string, error) {
	for _, fn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON, ConfigPathYAML} {
		path, err := fn()
		if err != nil {
			return "", err
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return path, nil
		}
	}
	return ConfigPathTOML()
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files hold webhook credentials and must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory.
// Tries TOML, then JSON, then YAML, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ActivePath()
	if err != nil {
		return finish(Default())
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		// Fall back to defaults, keeping the load error for the caller.
		def, finishErr := finish(Default())
		if finishErr != nil {
			return nil, finishErr
		}
		return def, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file with full
// validation. The format follows the file extension; unknown extensions
// are read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := decodeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// ReadFile decodes path over the defaults without environment overrides or
// validation, so the result can be edited and saved back. A missing file
// yields the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := decodeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(cfg, path)
	case ".yaml", ".yml":
		return LoadYAML(cfg, path)
	default:
		return LoadTOML(cfg, path)
	}
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	warnPermissions(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadYAML loads configuration from a YAML file.
func LoadYAML(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

func warnPermissions(path string) {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration back to the active config file, keeping its
// format.
func Save(cfg *Config) error {
	path, err := ActivePath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration in the format implied by path.
// SECURITY: Files are written atomically with 0600 permissions.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = encodeTOML(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func encodeTOML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# orb configuration file\n")
	buf.WriteString("# Credentials may instead come from ORB_WEBHOOK_USER / ORB_WEBHOOK_PASSWORD\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validBackends  = []string{"sqlite", "file", "memory"}
	validThemes    = []string{"dark", "light", "auto"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate validates the configuration and returns any errors.
// An empty webhook URL is allowed here; see RequireWebhook.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Webhook.URL != "" {
		if err := validateURL(c.Webhook.URL); err != nil {
			errs = append(errs, ValidationError{Field: "webhook.url", Message: err.Error()})
		}
	}
	if c.Webhook.Password != "" && c.Webhook.Username == "" {
		errs = append(errs, ValidationError{Field: "webhook.username", Message: "required when a password is set"})
	}
	if c.Webhook.TimeoutSecs < 1 || c.Webhook.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{Field: "webhook.timeout_secs", Message: "must be between 1 and 600"})
	}
	if c.Webhook.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "webhook.rate_limit_per_minute", Message: "must not be negative"})
	}

	if !contains(validBackends, c.Session.Backend) {
		errs = append(errs, ValidationError{
			Field:   "session.backend",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validBackends, ", ")),
		})
	}
	if c.Session.TTLHours < 1 || c.Session.TTLHours > 24*365 {
		errs = append(errs, ValidationError{Field: "session.ttl_hours", Message: "must be between 1 and 8760"})
	}

	if !contains(validThemes, c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validThemes, ", ")),
		})
	}
	if c.UI.FPS < 1 || c.UI.FPS > 60 {
		errs = append(errs, ValidationError{Field: "ui.fps", Message: "must be between 1 and 60"})
	}

	if !contains(validLogLevels, c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequireWebhook reports whether enough is configured to send a query.
func (c *Config) RequireWebhook() error {
	if c.Webhook.URL == "" {
		return ValidationError{
			Field:   "webhook.url",
			Message: "not configured (set ORB_WEBHOOK_URL or run 'orb config set webhook.url <url>')",
		}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	if u.User != nil {
		return errors.New("credentials belong in webhook.username/webhook.password, not the URL")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Webhook.TimeoutSecs == 0 {
		c.Webhook.TimeoutSecs = defaults.Webhook.TimeoutSecs
	}
	if c.Session.Backend == "" {
		c.Session.Backend = defaults.Session.Backend
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = defaults.Session.TTLHours
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.FPS == 0 {
		c.UI.FPS = defaults.UI.FPS
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Migrate normalizes older or looser spellings.
func (c *Config) Migrate() error {
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case "sqlite3", "db":
		c.Session.Backend = "sqlite"
	case "files", "json":
		c.Session.Backend = "file"
	case "mem", "ephemeral":
		c.Session.Backend = "memory"
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.Webhook.URL = strings.TrimSpace(c.Webhook.URL)
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ORB_WEBHOOK_URL: overrides webhook.url
//   - ORB_WEBHOOK_USER: overrides webhook.username
//   - ORB_WEBHOOK_PASSWORD: overrides webhook.password
//   - ORB_WEBHOOK_TIMEOUT: overrides webhook.timeout_secs
//   - ORB_SESSION_BACKEND: overrides session.backend
//   - ORB_LOG_LEVEL: overrides log.level
//   - ORB_THEME: overrides ui.theme
//   - ORB_NO_ANIMATION: set to "1" or "true" to enable ui.reduce_motion
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ORB_WEBHOOK_URL"); v != "" {
		c.Webhook.URL = v
	}
	if v := os.Getenv("ORB_WEBHOOK_USER"); v != "" {
		c.Webhook.Username = v
	}
	if v := os.Getenv("ORB_WEBHOOK_PASSWORD"); v != "" {
		c.Webhook.Password = v
	}
	if v := os.Getenv("ORB_WEBHOOK_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Webhook.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("ORB_SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := os.Getenv("ORB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ORB_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("ORB_NO_ANIMATION"); v != "" {
		c.UI.ReduceMotion = v == "1" || strings.ToLower(v) == "true"
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "webhook.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "webhook.url").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"webhook.url",
		"webhook.username",
		"webhook.password",
		"webhook.timeout_secs",
		"webhook.rate_limit_per_minute",
		"session.backend",
		"session.path",
		"session.ttl_hours",
		"ui.theme",
		"ui.reduce_motion",
		"ui.fps",
		"ui.report_empty_answers",
		"log.level",
		"log.path",
	}
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return key == "webhook.password"
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON representation with credentials redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Webhook.Password != "" {
		safe.Webhook.Password = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
