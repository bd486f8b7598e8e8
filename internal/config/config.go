// Package config loads widgetgen CLI settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-widgetgen/pkg/generator"
)

// EnvPrefix prefixes every environment override, e.g. WIDGETGEN_PAGE_URL.
const EnvPrefix = "WIDGETGEN"

// Config holds CLI configuration.
type Config struct {
	PageURL   string        `mapstructure:"page_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Copy      bool          `mapstructure:"copy"`
	Log       LogConfig     `mapstructure:"log"`
	Selectors Selectors     `mapstructure:"selectors"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Selectors mirrors generator.Selectors so the admin screen layout can be
// overridden without code changes.
type Selectors struct {
	WidgetForm   string `mapstructure:"widget_form"`
	SkinForm     string `mapstructure:"skin_form"`
	WidgetSelect string `mapstructure:"widget_select"`
	SkinSelect   string `mapstructure:"skin_select"`
	Code         string `mapstructure:"code"`
	Inputs       string `mapstructure:"inputs"`
	Skins        string `mapstructure:"skins"`
	Form         string `mapstructure:"form"`
}

// Generator converts the configured selectors for generator.WithSelectors.
func (s Selectors) Generator() generator.Selectors {
	return generator.Selectors{
		WidgetForm:   s.WidgetForm,
		SkinForm:     s.SkinForm,
		WidgetSelect: s.WidgetSelect,
		SkinSelect:   s.SkinSelect,
		Code:         s.Code,
		Inputs:       s.Inputs,
		Skins:        s.Skins,
		Form:         s.Form,
	}
}

// Path returns the config file location: WIDGETGEN_CONFIG when set, else
// $HOME/.config/widgetgen/config.yaml.
func Path() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "widgetgen", "config.yaml")
}

// Load reads configuration from file and env. A missing file is not an error.
func Load() (Config, error) {
	v := viper.New()

	def := generator.DefaultSelectors()
	v.SetDefault("page_url", "http://localhost:8383/widget/generate")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("copy", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("selectors.widget_form", def.WidgetForm)
	v.SetDefault("selectors.skin_form", def.SkinForm)
	v.SetDefault("selectors.widget_select", def.WidgetSelect)
	v.SetDefault("selectors.skin_select", def.SkinSelect)
	v.SetDefault("selectors.code", def.Code)
	v.SetDefault("selectors.inputs", def.Inputs)
	v.SetDefault("selectors.skins", def.Skins)
	v.SetDefault("selectors.form", def.Form)

	v.SetConfigType("yaml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !missingFile(err) {
		return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that may also arrive from command-line overrides.
func (c *Config) Validate() error {
	c.PageURL = strings.TrimSpace(c.PageURL)
	if c.PageURL == "" {
		return fmt.Errorf("config: page_url is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative")
	}
	return nil
}

func missingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
