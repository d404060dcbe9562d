// Package config loads the .lintmux.yml project configuration with
// environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/lintmux/lintmux/internal/gitdiff"
	"github.com/lintmux/lintmux/internal/runner"
	"github.com/lintmux/lintmux/internal/textspan"
)

// Config is the complete lintmux configuration.
type Config struct {
	Tools   ToolsConfig   `yaml:"tools" mapstructure:"tools"`
	Ignore  []string      `yaml:"ignore" mapstructure:"ignore"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`

	// MaxDuplicates caps the reported duplicate pairs; 0 means no cap.
	MaxDuplicates int `yaml:"max_duplicates" mapstructure:"max_duplicates"`
}

// ToolsConfig overrides the analyzer invocations. An empty command keeps
// the stock one; projects routing through a package manager set e.g.
// ["npx", "eslint", "--format", "json"].
type ToolsConfig struct {
	ESLint   []string `yaml:"eslint" mapstructure:"eslint"`
	TSC      []string `yaml:"tsc" mapstructure:"tsc"`
	Prettier []string `yaml:"prettier" mapstructure:"prettier"`
	JSCPD    []string `yaml:"jscpd" mapstructure:"jscpd"`

	// TimeoutSeconds bounds each tool run.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format       string   `yaml:"format" mapstructure:"format"` // "text" or "sarif"
	TabWidth     int      `yaml:"tab_width" mapstructure:"tab_width"`
	ContextLines int      `yaml:"context_lines" mapstructure:"context_lines"`
	SourceOrder  []string `yaml:"source_order" mapstructure:"source_order"`
}

// HistoryConfig locates the run log.
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // relative to the project root
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Ignore: []string{
			"**/*.d.ts",
			"dist/**",
			"build/**",
			"coverage/**",
		},
		Tools: ToolsConfig{
			TimeoutSeconds: 120,
		},
		Output: OutputConfig{
			Format:       "text",
			TabWidth:     textspan.DefaultTabWidth,
			ContextLines: 3,
			SourceOrder:  []string{"upstream", "worktree", "staged"},
		},
		History: HistoryConfig{
			Path: filepath.Join(".lintmux", "history.db"),
		},
		MaxDuplicates: 100,
	}
}

// RunnerTools materializes the configured analyzer set.
func (c *Config) RunnerTools() []runner.Tool {
	timeout := time.Duration(c.Tools.TimeoutSeconds) * time.Second
	override := map[runner.Kind][]string{
		runner.KindESLint:   c.Tools.ESLint,
		runner.KindTSC:      c.Tools.TSC,
		runner.KindPrettier: c.Tools.Prettier,
		runner.KindJSCPD:    c.Tools.JSCPD,
	}

	tools := runner.DefaultTools()
	for i := range tools {
		if cmd := override[tools[i].Kind]; len(cmd) > 0 {
			tools[i].Command = cmd
		}
		tools[i].Timeout = timeout
	}
	return tools
}

// DiffSources converts the configured source order.
func (c *Config) DiffSources() []gitdiff.Source {
	out := make([]gitdiff.Source, 0, len(c.Output.SourceOrder))
	for _, s := range c.Output.SourceOrder {
		out = append(out, gitdiff.Source(s))
	}
	return out
}

// HistoryPath resolves the run log location against the project root.
func (c *Config) HistoryPath(rootDir string) string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(rootDir, c.History.Path)
}

var validSources = map[string]bool{
	string(gitdiff.SourceUpstream): true,
	string(gitdiff.SourceWorktree): true,
	string(gitdiff.SourceStaged):   true,
}

// Validate rejects configurations the pipeline cannot honor.
func Validate(cfg *Config) error {
	if cfg.Output.Format != "text" && cfg.Output.Format != "sarif" {
		return fmt.Errorf("output.format must be \"text\" or \"sarif\", got %q", cfg.Output.Format)
	}
	if cfg.Output.TabWidth < 1 || cfg.Output.TabWidth > 16 {
		return fmt.Errorf("output.tab_width must be between 1 and 16, got %d", cfg.Output.TabWidth)
	}
	if cfg.Output.ContextLines < 0 || cfg.Output.ContextLines > 10 {
		return fmt.Errorf("output.context_lines must be between 0 and 10, got %d", cfg.Output.ContextLines)
	}
	if len(cfg.Output.SourceOrder) == 0 {
		return fmt.Errorf("output.source_order must name at least one diff source")
	}
	for _, s := range cfg.Output.SourceOrder {
		if !validSources[s] {
			return fmt.Errorf("unknown diff source %q in output.source_order", s)
		}
	}
	if cfg.MaxDuplicates < 0 {
		return fmt.Errorf("max_duplicates must not be negative, got %d", cfg.MaxDuplicates)
	}
	if cfg.Tools.TimeoutSeconds < 1 {
		return fmt.Errorf("tools.timeout_seconds must be positive, got %d", cfg.Tools.TimeoutSeconds)
	}
	return nil
}
