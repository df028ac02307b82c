// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads docsnip settings from a config file and DOCSNIP_*
// environment variables.
//
// Priority, highest first: environment, config file, defaults. The config
// file is the explicit --config path, else docsnip.yaml in the working
// directory, else $XDG_CONFIG_HOME/docsnip/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/pdiddy/docsnip/internal/discover"
	"github.com/pdiddy/docsnip/internal/logging"
	"github.com/pdiddy/docsnip/internal/pattern"
	"github.com/pdiddy/docsnip/internal/replace"
	"github.com/pdiddy/docsnip/pkg/types"
)

const (
	// FileName is the project config file looked up in the working directory.
	FileName = "docsnip.yaml"
	// GlobalFile is the user config file relative to the XDG config home.
	GlobalFile = "docsnip/config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. DOCSNIP_WORKERS.
	EnvPrefix = "DOCSNIP"
)

// envKeys are the keys that can be overridden from the environment.
var envKeys = []string{
	"workers",
	"replacer.start",
	"replacer.end",
	"collector.includes",
	"collector.excludes",
	"collector.ignore",
}

// Default returns the built-in configuration.
func Default() types.Config {
	return types.Config{
		Collector: types.CollectorConfig{
			Ignore: append([]string(nil), discover.DefaultIgnore...),
		},
		Replacer: types.ReplacerConfig{
			Start: replace.DefaultStart,
			End:   replace.DefaultEnd,
		},
	}
}

// Load reads configuration into v and returns the validated result. When
// configFile is empty the project and user config locations are searched,
// and finding neither is not an error.
func Load(v *viper.Viper, configFile, workDir string) (*types.Config, error) {
	log := logging.Get("config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	setDefaults(v)

	if configFile == "" {
		configFile = Find(workDir)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("Using config file")
	}

	cfg := &types.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Find returns the config file to use when none is given explicitly, or ""
// when there is none.
func Find(workDir string) string {
	local := filepath.Join(workDir, FileName)
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}
	if global, err := xdg.SearchConfigFile(GlobalFile); err == nil {
		return global
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("replacer.start", d.Replacer.Start)
	v.SetDefault("replacer.end", d.Replacer.End)
	v.SetDefault("collector.ignore", d.Collector.Ignore)
}

// Validate checks that every expression and template in cfg compiles.
func Validate(cfg *types.Config) error {
	var errs []error
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers))
	}
	for i, p := range cfg.Parser.Patterns {
		if p.Start == "" || p.End == "" {
			errs = append(errs, fmt.Errorf("pattern %d: start and end are required", i))
		}
	}
	if _, err := pattern.Compile(cfg.Parser.Patterns); err != nil {
		errs = append(errs, err)
	}
	if _, err := replace.FromConfig(cfg.Replacer); err != nil {
		errs = append(errs, fmt.Errorf("replacer: %w", err))
	}
	if _, err := discover.New(".", cfg.Collector); err != nil {
		errs = append(errs, fmt.Errorf("collector: %w", err))
	}
	return errors.Join(errs...)
}
