package shared

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment overrides applied on top of the TOML config.
const (
	EnvOutputDir    = "ROLESPLIT_OUTPUT_DIR"
	EnvEncoding     = "ROLESPLIT_ENCODING"
	EnvDatabasePath = "ROLESPLIT_DB_PATH"
	EnvLogLevel     = "ROLESPLIT_LOG_LEVEL"
	EnvSFTPPassword = "ROLESPLIT_SFTP_PASSWORD"
)

// LoadEnv reads KEY=value files into the process environment without overriding variables already set.
// Missing files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides config values from ROLESPLIT_* variables, then revalidates.
func (c *Config) ApplyEnv() error {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvOutputDir, &c.Output.Directory},
		{EnvEncoding, &c.Input.Encoding},
		{EnvDatabasePath, &c.Database.Path},
		{EnvLogLevel, &c.Log.Level},
		{EnvSFTPPassword, &c.Output.SFTP.Password},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.target = v
		}
	}
	return c.Validate()
}
