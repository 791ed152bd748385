package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Input    InputConfig    `toml:"input"`
	Output   OutputConfig   `toml:"output"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// InputConfig controls how spreadsheet rows are read and classified.
type InputConfig struct {
	SkipHeader   bool   `toml:"skip_header"`
	Encoding     string `toml:"encoding"`
	LenientRoles bool   `toml:"lenient_roles"`
}

// OutputConfig selects where category files are written.
type OutputConfig struct {
	Directory string     `toml:"directory"`
	SFTP      SFTPConfig `toml:"sftp"`
}

// SFTPConfig contains remote upload settings. When enabled, files go to RemoteDir instead of Directory.
type SFTPConfig struct {
	Enabled               bool   `toml:"enabled"`
	Host                  string `toml:"host"`
	Port                  int    `toml:"port"`
	User                  string `toml:"user"`
	Password              string `toml:"password"`
	RemoteDir             string `toml:"remote_dir"`
	KnownHosts            string `toml:"known_hosts"`
	InsecureIgnoreHostKey bool   `toml:"insecure_ignore_host_key"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string  `toml:"host"`
	Port        int     `toml:"port"`
	RateLimit   float64 `toml:"rate_limit"`
	Burst       int     `toml:"burst"`
	MaxUploadMB int64   `toml:"max_upload_mb"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail late, deep inside a run.
func (c *Config) Validate() error {
	if c.Input.Encoding == "" {
		return fmt.Errorf("%w: input.encoding is required", ErrInvalidConfig)
	}
	if c.Output.SFTP.Enabled && (c.Output.SFTP.Host == "" || c.Output.SFTP.User == "") {
		return fmt.Errorf("%w: output.sftp requires host and user", ErrInvalidConfig)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
