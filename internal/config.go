package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ooker777/breadcrumbs/internal/indexservice"
	"github.com/ooker777/breadcrumbs/internal/parser"
	"github.com/ooker777/breadcrumbs/internal/sink"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app" toml:"app"`
	Vault     VaultConfig       `yaml:"vault" toml:"vault"`
	SQLite    SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth" toml:"auth"`
	Hierarchy HierarchyConfig   `yaml:"hierarchy" toml:"hierarchy"`
	Index     IndexConfig       `yaml:"index" toml:"index"`
	Output    OutputConfig      `yaml:"output" toml:"output"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Vault, &c.SQLite, &c.Auth, &c.Hierarchy, &c.Index, &c.Output} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
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

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
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

// HierarchyConfig names the frontmatter and inline keys that declare parents
// (Up) and children (Down).
type HierarchyConfig struct {
	Up   []string `yaml:"up" toml:"up"`
	Down []string `yaml:"down" toml:"down"`
}

// Validate validates the hierarchy configuration.
func (c *HierarchyConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Up, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.Down, validation.Required, validation.Each(validation.Required)),
	); err != nil {
		return err
	}
	for _, u := range c.Up {
		for _, d := range c.Down {
			if u == d {
				return fmt.Errorf("hierarchy: key %q is both up and down", u)
			}
		}
	}
	return nil
}

// Fields converts the configuration to parser field names.
func (c *HierarchyConfig) Fields() parser.Fields {
	return parser.Fields{Up: c.Up, Down: c.Down}
}

// IndexConfig holds the default index rendering options.
type IndexConfig struct {
	Wikilinks bool   `yaml:"wikilinks" toml:"wikilinks"`
	Aliases   bool   `yaml:"aliases" toml:"aliases"`
	Scope     string `yaml:"scope" toml:"scope"`
	// MaxSteps bounds each traversal; 0 disables the bound.
	MaxSteps int `yaml:"max_steps" toml:"max_steps"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	if c.Scope == "" {
		c.Scope = string(indexservice.ScopeTraversal)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Scope, validation.In(string(indexservice.ScopeTraversal), string(indexservice.ScopeGlobal))),
		validation.Field(&c.MaxSteps, validation.Min(0)),
	)
}

// Options converts the configuration to service options.
func (c *IndexConfig) Options() indexservice.Options {
	return indexservice.Options{
		Wikilinks: c.Wikilinks,
		Aliases:   c.Aliases,
		Scope:     indexservice.Scope(c.Scope),
	}
}

// OutputConfig selects where one-shot commands deliver an index.
type OutputConfig struct {
	Sink string `yaml:"sink" toml:"sink"`
	// File is the vault-relative note written by the file sink.
	File string `yaml:"file" toml:"file"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	if c.Sink == "" {
		c.Sink = sink.NameStdout
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Sink, validation.In(sink.NameStdout, sink.NameFile, sink.NameClipboard)),
		validation.Field(&c.File, validation.When(c.Sink == sink.NameFile, validation.Required)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	fields := parser.DefaultFields()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./breadcrumbs.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Hierarchy: HierarchyConfig{
			Up:   fields.Up,
			Down: fields.Down,
		},
		Index: IndexConfig{
			Scope:    string(indexservice.ScopeTraversal),
			MaxSteps: 100000,
		},
		Output: OutputConfig{
			Sink: sink.NameStdout,
			File: "Index.md",
		},
	}
}
