package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DATATIDY_ZSCORE_THRESHOLD.
const EnvPrefix = "DATATIDY"

// Global configuration structure.
type Global struct {
	ZScoreThreshold float64 `mapstructure:"zscore_threshold" yaml:"zscore_threshold" validate:"gt=0"`
	OutputFormat    string  `mapstructure:"output_format" yaml:"output_format" validate:"oneof=csv tsv xlsx sqlite json"`
	OutputDir       string  `mapstructure:"output_dir" yaml:"output_dir"`
	PreviewRows     int     `mapstructure:"preview_rows" yaml:"preview_rows" validate:"gte=0,lte=1000"`
	Workers         int     `mapstructure:"workers" yaml:"workers" validate:"gte=1,lte=64"`
	LogLevel        string  `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogJSON         bool    `mapstructure:"log_json" yaml:"log_json"`
	// Delimiter for text input; empty means infer from the extension. "tab" selects '\t'.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter" validate:"max=3"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("zscore_threshold", 3.0)
	v.SetDefault("output_format", "csv")
	v.SetDefault("output_dir", "")
	v.SetDefault("preview_rows", 10)
	v.SetDefault("workers", 4)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_json", false)
	v.SetDefault("delimiter", "")
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Dir returns ~/.datatidy.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datatidy"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datatidy/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
// A missing default config file is not an error; a missing or malformed explicit one is.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}()

// Validate checks field constraints and reports every failing key.
func (c *Global) Validate() error {
	if c == nil {
		return errors.New("configuration cannot be nil")
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Field(), fe.Tag()+paramSuffix(fe.Param()), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// DelimiterRune returns the configured input delimiter, or 0 to infer it.
func (c *Global) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case "tab", `\t`, "\t":
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

type field struct {
	get func(c *Global) any
	set func(c *Global, v string) error
}

var fields = map[string]field{
	"zscore_threshold": {
		get: func(c *Global) any { return c.ZScoreThreshold },
		set: func(c *Global, v string) (err error) { c.ZScoreThreshold, err = cast.ToFloat64E(v); return },
	},
	"output_format": {
		get: func(c *Global) any { return c.OutputFormat },
		set: func(c *Global, v string) error { c.OutputFormat = strings.ToLower(v); return nil },
	},
	"output_dir": {
		get: func(c *Global) any { return c.OutputDir },
		set: func(c *Global, v string) error { c.OutputDir = v; return nil },
	},
	"preview_rows": {
		get: func(c *Global) any { return c.PreviewRows },
		set: func(c *Global, v string) (err error) { c.PreviewRows, err = cast.ToIntE(v); return },
	},
	"workers": {
		get: func(c *Global) any { return c.Workers },
		set: func(c *Global, v string) (err error) { c.Workers, err = cast.ToIntE(v); return },
	},
	"log_level": {
		get: func(c *Global) any { return c.LogLevel },
		set: func(c *Global, v string) error { c.LogLevel = strings.ToLower(v); return nil },
	},
	"log_json": {
		get: func(c *Global) any { return c.LogJSON },
		set: func(c *Global, v string) (err error) { c.LogJSON, err = cast.ToBoolE(v); return },
	},
	"delimiter": {
		get: func(c *Global) any { return c.Delimiter },
		set: func(c *Global, v string) error { c.Delimiter = v; return nil },
	},
}

// Keys returns the settable configuration keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of key.
func (c *Global) Get(key string) (any, error) {
	f, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("unknown key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return f.get(c), nil
}

// Set coerces val to the key's type and assigns it. The result is validated; on failure the
// previous value is restored.
func (c *Global) Set(key, val string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	prev := *c
	if err := f.set(c, strings.TrimSpace(val)); err != nil {
		*c = prev
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := c.Validate(); err != nil {
		*c = prev
		return err
	}
	return nil
}
