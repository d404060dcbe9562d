package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lintmux/lintmux/internal/gitdiff"
	"github.com/lintmux/lintmux/internal/runner"
)

// Test Plan for configuration:
// - Load without a config file yields validated defaults
// - A .lintmux.yml file overrides defaults and merges with them
// - Environment variables beat the config file
// - Validate rejects bad formats, tab widths and diff sources
// - RunnerTools applies command overrides and the timeout

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 8, cfg.Output.TabWidth)
	assert.Equal(t, []string{"upstream", "worktree", "staged"}, cfg.Output.SourceOrder)
	assert.Contains(t, cfg.Ignore, "dist/**")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yml := `
output:
  tab_width: 4
  source_order: [worktree]
tools:
  eslint: [npx, eslint, --format, json]
max_duplicates: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lintmux.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Output.TabWidth)
	assert.Equal(t, []gitdiff.Source{gitdiff.SourceWorktree}, cfg.DiffSources())
	assert.Equal(t, 5, cfg.MaxDuplicates)
	assert.Equal(t, "text", cfg.Output.Format, "unset keys keep their defaults")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LINTMUX_OUTPUT_TAB_WIDTH", "2")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Output.TabWidth)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	good := Default()
	require.NoError(t, Validate(good))

	bad := Default()
	bad.Output.Format = "xml"
	assert.Error(t, Validate(bad))

	bad = Default()
	bad.Output.TabWidth = 0
	assert.Error(t, Validate(bad))

	bad = Default()
	bad.Output.SourceOrder = []string{"upstream", "timemachine"}
	assert.Error(t, Validate(bad))

	bad = Default()
	bad.Output.SourceOrder = nil
	assert.Error(t, Validate(bad))
}

func TestRunnerTools(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Tools.ESLint = []string{"npx", "eslint", "--format", "json"}
	cfg.Tools.TimeoutSeconds = 30

	tools := cfg.RunnerTools()
	byKind := make(map[runner.Kind]runner.Tool, len(tools))
	for _, tool := range tools {
		byKind[tool.Kind] = tool
	}

	assert.Equal(t, []string{"npx", "eslint", "--format", "json"}, byKind[runner.KindESLint].Command)
	assert.Equal(t, "tsc", byKind[runner.KindTSC].Command[0], "unset commands keep the stock invocation")
	assert.Equal(t, float64(30), byKind[runner.KindTSC].Timeout.Seconds())
}
