// Package config loads pvextract settings from the environment and an
// optional YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/pvextract-go/pkg/pvextract"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/output"
)

// Prefix of every environment variable read by Load.
const Prefix = "PVEXTRACT"

// DotEnvFile is read before the environment when present in the working
// directory. Variables already set are not overridden.
const DotEnvFile = ".env"

// paletteDefaultKey names the fallback header colors in the palette section.
const paletteDefaultKey = "default"

// Config represents the complete tool configuration.
type Config struct {
	Workers      int       `yaml:"workers" toml:"workers" envconfig:"WORKERS" validate:"gte=0"`
	SkipLeading  int       `yaml:"skip_leading" toml:"skip_leading" envconfig:"SKIP_LEADING" default:"1" validate:"gte=0"`
	SkipTrailing int       `yaml:"skip_trailing" toml:"skip_trailing" envconfig:"SKIP_TRAILING" default:"1" validate:"gte=0"`
	PageTimeout  Duration  `yaml:"page_timeout" toml:"page_timeout" envconfig:"PAGE_TIMEOUT" default:"0s" validate:"gte=0s"`
	SimpleSuffix string    `yaml:"simple_suffix" toml:"simple_suffix" envconfig:"SIMPLE_SUFFIX" default:"-simple" validate:"required"`
	WriteJSON    bool      `yaml:"write_json" toml:"write_json" envconfig:"WRITE_JSON" default:"false"`
	MetricsFile  string    `yaml:"metrics_file" toml:"metrics_file" envconfig:"METRICS_FILE"`
	ConfigFile   string    `yaml:"-" toml:"-" envconfig:"CONFIG_FILE"`
	Log          LogConfig `yaml:"log" toml:"log" envconfig:"LOG"`

	// Palette overrides header colors by category letter; the "default" key
	// overrides the fallback pair. Only settable from the config file.
	Palette map[string]output.Colors `yaml:"palette" toml:"palette" ignored:"true"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level    string `yaml:"level" toml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" toml:"output" envconfig:"OUTPUT" default:"stderr" validate:"oneof=stdout stderr file both"`
	FilePath string `yaml:"file_path" toml:"file_path" envconfig:"FILE_PATH" default:"pvextract.log"`
}

// Load reads DotEnvFile, the environment, then the file named by
// PVEXTRACT_CONFIG_FILE when set. Values from the file win.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", DotEnvFile, err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if cfg.ConfigFile != "" {
		if err := cfg.loadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile decodes TOML for a .toml extension and YAML otherwise.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, c)
	} else {
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Duration); ok {
			return d.Std()
		}
		return nil
	}, Duration(0))
	// Report fields under their file names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for values the tool cannot run with.
func (c *Config) Validate() error {
	v := newValidator()

	var errs []error
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fmt.Errorf("%s: failed %q %s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	for key, colors := range c.Palette {
		if key != paletteDefaultKey && utf8.RuneCountInString(key) != 1 {
			errs = append(errs, fmt.Errorf("palette key %q is not a single category letter", key))
		}
		for _, color := range []string{colors.Fill, colors.Font} {
			if err := v.Var(color, "len=6,hexadecimal"); err != nil {
				errs = append(errs, fmt.Errorf("palette %q: %q is not an RRGGBB color", key, color))
			}
		}
	}
	return errors.Join(errs...)
}

// Options converts the configuration into extraction options.
func (c *Config) Options() pvextract.Options {
	opts := pvextract.DefaultOptions()
	opts.PageRange = pvextract.PageRange{SkipLeading: c.SkipLeading, SkipTrailing: c.SkipTrailing}
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	opts.PageTimeout = c.PageTimeout.Std()
	return opts
}

// OutputPalette returns the default palette with the configured overrides.
func (c *Config) OutputPalette() output.Palette {
	p := output.DefaultPalette()
	for key, colors := range c.Palette {
		if key == paletteDefaultKey {
			p = p.WithDefault(colors)
			continue
		}
		letter, _ := utf8.DecodeRuneInString(key)
		p = p.With(letter, colors)
	}
	return p
}
