package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration for a project root with the following
// priority (highest to lowest):
//  1. Environment variables (LINTMUX_*)
//  2. Config file (.lintmux.yml in the project root)
//  3. Default values
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(".lintmux")
	v.SetConfigType("yaml")
	v.AddConfigPath(rootDir)

	v.SetEnvPrefix("LINTMUX")
	v.AutomaticEnv()
	// LINTMUX_OUTPUT_TAB_WIDTH overrides output.tab_width.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file just means defaults plus env vars.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("ignore", defaults.Ignore)
	v.SetDefault("max_duplicates", defaults.MaxDuplicates)

	v.SetDefault("tools.eslint", defaults.Tools.ESLint)
	v.SetDefault("tools.tsc", defaults.Tools.TSC)
	v.SetDefault("tools.prettier", defaults.Tools.Prettier)
	v.SetDefault("tools.jscpd", defaults.Tools.JSCPD)
	v.SetDefault("tools.timeout_seconds", defaults.Tools.TimeoutSeconds)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.tab_width", defaults.Output.TabWidth)
	v.SetDefault("output.context_lines", defaults.Output.ContextLines)
	v.SetDefault("output.source_order", defaults.Output.SourceOrder)

	v.SetDefault("history.path", defaults.History.Path)
}
