package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/kv"
	"github.com/starford/quire/internal/persistence"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Store   StoreConfig       `yaml:"store"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where state is persisted.
//
// Backend "file" writes a JSON document into DataDir through the desktop
// bridge, which also enables export and import. Backend "kv" stores the
// snapshot in a key-value database. DataDir holds attachments either way.
type StorageConfig struct {
	Backend  string   `yaml:"backend"`
	DataDir  string   `yaml:"data_dir"`
	FileName string   `yaml:"file_name"`
	Watch    bool     `yaml:"watch"`
	KV       KVConfig `yaml:"kv"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(persistence.BackendFile, persistence.BackendKV)),
		validation.Field(&c.DataDir, validation.Required),
	); err != nil {
		return err
	}
	if c.FileName != "" && filepath.Base(c.FileName) != c.FileName {
		return fmt.Errorf("storage: file_name %q must be a plain file name", c.FileName)
	}
	return c.KV.Validate()
}

// UsesBridge reports whether state goes through the desktop bridge.
func (c *StorageConfig) UsesBridge() bool {
	return c.Backend == persistence.BackendFile
}

// KVPath returns the key-value database path, defaulting to a location
// inside the data directory. Badger stores a directory, SQLite a file.
func (c *StorageConfig) KVPath() string {
	if c.KV.Path != "" {
		return c.KV.Path
	}
	if c.KV.Driver == kv.DriverBadger {
		return filepath.Join(c.DataDir, "badger")
	}
	return filepath.Join(c.DataDir, "quire.db")
}

// KVConfig holds key-value backend configuration.
type KVConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Validate validates the key-value configuration.
func (c *KVConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(kv.DriverSQLite, kv.DriverBadger)),
	)
}

// StoreConfig holds note store configuration.
type StoreConfig struct {
	// Seed starts an empty store with the welcome notes.
	Seed bool `yaml:"seed"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:        8080,
				CORSOrigins: []string{"http://localhost:5173"},
			},
		},
		Storage: StorageConfig{
			Backend:  persistence.BackendFile,
			DataDir:  "./data",
			FileName: persistence.DefaultFileName,
			Watch:    true,
			KV: KVConfig{
				Driver: kv.DriverSQLite,
			},
		},
		Store: StoreConfig{
			Seed: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
