// Package config resolves the source and destination of a backup pass.
//
// The two paths default to the fluxcast checkout and its share on the backup
// mount. They can be overridden, in increasing order of precedence, by a
// config file (YAML, or JSON with comments), FLUXCAST_BACKUP_* environment
// variables and command-line flags. Layering is handled by spf13/viper.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/fluxcast/fluxcast-backup/internal/model"
)

const (
	// DefaultSource is the tree being backed up. The trailing separator makes
	// rsync copy the directory's contents rather than the directory itself.
	DefaultSource = "/home/dan/code/fluxcast/"

	// DefaultDestination is the mirror target on the backup share.
	DefaultDestination = "/mnt/shares/backups/fluxcast/"

	// DefaultRsync is looked up on PATH.
	DefaultRsync = "rsync"

	// DefaultLogLevel applies when neither flag nor environment set one.
	DefaultLogLevel = "info"

	// EnvPrefix prefixes every environment override, e.g. FLUXCAST_BACKUP_SOURCE.
	EnvPrefix = "FLUXCAST_BACKUP"

	// ExcludeFileName is appended to the source path to locate the exclusion list.
	ExcludeFileName = ".gitignore"
)

// Keys shared by viper, the config file and the command-line flags.
const (
	KeySource      = "source"
	KeyDestination = "destination"
	KeyRsync       = "rsync"
	KeyLogLevel    = "log-level"
)

// Config holds the startup parameters of one backup pass.
type Config struct {
	Source      string `mapstructure:"source" yaml:"source"`
	Destination string `mapstructure:"destination" yaml:"destination"`
	RsyncBin    string `mapstructure:"rsync" yaml:"rsync"`
	LogLevel    string `mapstructure:"log-level" yaml:"log-level"`
}

// LoadOptions controls where Load looks for overrides.
type LoadOptions struct {
	// File is an optional config file path. Empty means no file.
	File string

	// Flags, when set, are bound so that explicitly passed flags win over
	// every other layer. Only flags named after the Key* constants are used.
	Flags *pflag.FlagSet
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Source:      DefaultSource,
		Destination: DefaultDestination,
		RsyncBin:    DefaultRsync,
		LogLevel:    DefaultLogLevel,
	}
}

// Load resolves the configuration from defaults, the optional file, the
// environment and flags. The result is not validated; call Validate.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(KeySource, def.Source)
	v.SetDefault(KeyDestination, def.Destination)
	v.SetDefault(KeyRsync, def.RsyncBin)
	v.SetDefault(KeyLogLevel, def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		if err := readFile(v, opts.File); err != nil {
			return nil, err
		}
	}

	if opts.Flags != nil {
		for _, key := range []string{KeySource, KeyDestination, KeyRsync, KeyLogLevel} {
			if f := opts.Flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitInvalidConfig, "failed to decode configuration", err)
	}
	return cfg, nil
}

// readFile loads a YAML or JSONC config file into v. JSONC comments and
// trailing commas are stripped with tidwall/jsonc before viper parses it.
func readFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.WrapCLIError(model.ExitInvalidConfig,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return model.WrapCLIError(model.ExitInvalidConfig, "failed to read config file", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
		v.SetConfigType("json")
	default:
		return model.NewCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("unsupported config file %q: use .yaml, .yml, .json or .jsonc", path))
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return model.WrapCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// ExcludeFile returns the exclusion list path handed to rsync. It is the
// source path with ".gitignore" appended, relying on the trailing separator
// that Validate enforces.
func (c *Config) ExcludeFile() string {
	return c.Source + ExcludeFileName
}

// Validate checks the preconditions of a backup pass.
//
// The source must end with a path separator: without it rsync mirrors the
// directory itself into the destination instead of its contents, and the
// exclusion file path would be built next to the directory rather than in it.
func (c *Config) Validate() error {
	if c.Source == "" {
		return model.NewCLIError(model.ExitInvalidConfig, "source directory must not be empty")
	}
	if !filepath.IsAbs(c.Source) {
		return model.NewCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("source directory %q must be an absolute path", c.Source))
	}
	if !strings.HasSuffix(c.Source, string(os.PathSeparator)) {
		return model.NewCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("source directory %q must end with %q", c.Source, string(os.PathSeparator)))
	}
	if c.Destination == "" {
		return model.NewCLIError(model.ExitInvalidConfig, "backup directory must not be empty")
	}
	if !filepath.IsAbs(c.Destination) {
		return model.NewCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("backup directory %q must be an absolute path", c.Destination))
	}
	if filepath.Clean(c.Source) == filepath.Clean(c.Destination) {
		return model.NewCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("source and backup directory are the same: %s", filepath.Clean(c.Source)))
	}
	if strings.TrimSpace(c.RsyncBin) == "" {
		return model.NewCLIError(model.ExitInvalidConfig, "rsync binary must not be empty")
	}
	return nil
}

// effectiveView is the YAML shape printed by the config command.
type effectiveView struct {
	Config      `yaml:",inline"`
	ExcludeFrom string `yaml:"exclude-from"`
}

// YAML renders the effective configuration, including the derived exclusion
// file path, as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(effectiveView{Config: *c, ExcludeFrom: c.ExcludeFile()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return out, nil
}
