// Package config loads solls settings from solls.yaml, SOLLS_* environment
// variables, command-line flags and LSP initialization options.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/odvcencio/solls/pkg/workspace"
)

const (
	// FileName is the config file searched for in the working directory
	// and the project root.
	FileName = "solls"
	// EnvPrefix prefixes environment variables, e.g. SOLLS_LOG_LEVEL.
	EnvPrefix = "SOLLS"
)

// Config holds every setting.
type Config struct {
	Root         string        `mapstructure:"root"`
	IncludePaths []string      `mapstructure:"include_paths"`
	Remappings   []string      `mapstructure:"remappings"`
	Watch        bool          `mapstructure:"watch"`
	Debounce     time.Duration `mapstructure:"debounce"`
	Log          Log           `mapstructure:"log"`
}

// Log configures the process logger.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("watch", true)
	v.SetDefault("debounce", workspace.DefaultDebounce)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads configuration into a Config. An explicit file must exist;
// otherwise solls.yaml is optional. Flags in fs, when given, override the
// file and the environment.
func Load(v *viper.Viper, file string, fs *pflag.FlagSet) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, flag := range map[string]string{
			"root":          "root",
			"include_paths": "include-path",
			"remappings":    "remap",
			"watch":         "watch",
			"log.level":     "log-level",
			"log.file":      "log-file",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag --%s", flag)
				}
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

// InitializationOptions are the settings an editor may send with the LSP
// initialize request.
type InitializationOptions struct {
	IncludePaths []string `mapstructure:"includePaths"`
	Remappings   []string `mapstructure:"remappings"`
	LogLevel     string   `mapstructure:"logLevel"`
}

// ApplyInitializationOptions merges editor-supplied options into c. Lists
// are appended; scalars override when set.
func (c *Config) ApplyInitializationOptions(raw any) error {
	if raw == nil {
		return nil
	}
	var opts InitializationOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(err, "decode initialization options")
	}
	c.IncludePaths = append(c.IncludePaths, opts.IncludePaths...)
	c.Remappings = append(c.Remappings, opts.Remappings...)
	if opts.LogLevel != "" {
		c.Log.Level = opts.LogLevel
	}
	return nil
}

// WorkspaceOptions converts c into workspace options rooted at root, or at
// c.Root when root is empty.
func (c *Config) WorkspaceOptions(root string) (workspace.Options, error) {
	if root == "" {
		root = c.Root
	}
	remappings, err := workspace.ParseRemappings(c.Remappings)
	if err != nil {
		return workspace.Options{}, err
	}
	return workspace.Options{
		Root:         root,
		IncludePaths: c.IncludePaths,
		Remappings:   remappings,
		Debounce:     c.Debounce,
	}, nil
}
