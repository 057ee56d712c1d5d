package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sinecheck/internal/config"
	"github.com/verte-zerg/sinecheck/internal/model"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	_, err := toml.Decode(defaultConfigTemplate(), &cfg)
	require.NoError(t, err)
	assert.Nil(t, cfg.Analysis.HalfWindow)

	uncommented := regexp.MustCompile(`(?m)^# ([a-z-]+ = )`).ReplaceAllString(defaultConfigTemplate(), "$1")
	_, err = toml.Decode(uncommented, &cfg)
	require.NoError(t, err)
	require.NotNil(t, cfg.Analysis.HalfWindow)
	assert.Equal(t, defaultHalfWindow, *cfg.Analysis.HalfWindow)
	require.NotNil(t, cfg.Analysis.Pairs)
	assert.Equal(t, defaultPairSpecs, *cfg.Analysis.Pairs)
	require.NotNil(t, cfg.Output.Format)
	assert.Equal(t, "text", *cfg.Output.Format)
}

func TestValidateConfig(t *testing.T) {
	valid := model.AnalysisConfig{HalfWindow: 200, MaxShift: 50, Pairs: model.DefaultPairs, Epsilon: 1e-17}
	require.NoError(t, validateConfig(valid))

	cases := map[string]func(c *model.AnalysisConfig){
		"half window":  func(c *model.AnalysisConfig) { c.HalfWindow = 0 },
		"window order": func(c *model.AnalysisConfig) { c.WindowStart, c.WindowEnd = 10, 5 },
		"shift order":  func(c *model.AnalysisConfig) { c.MinShift = 50 },
		"pairs":        func(c *model.AnalysisConfig) { c.Pairs = nil },
		"epsilon":      func(c *model.AnalysisConfig) { c.Epsilon = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestParseSince(t *testing.T) {
	since, err := parseSince("")
	require.NoError(t, err)
	assert.Nil(t, since)

	since, err = parseSince("2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, since)
	assert.Equal(t, 3, int(since.Month()))

	_, err = parseSince("03/01/2024")
	assert.Error(t, err)
}

func TestGenerateThenAnalyzeJSON(t *testing.T) {
	dir := isolateXDG(t)
	logPath := filepath.Join(dir, "sine.txt")

	out, err := execute(t, "generate", "--out", logPath, "--seed", "7", "--quantum", "0", "--ref-lag", "2", "--pos-lag", "6")
	require.NoError(t, err)
	assert.Contains(t, out, logPath)

	out, err = execute(t, "analyze", logPath, "--format", "json", "--no-store", "--log-level", "error")
	require.NoError(t, err)

	var result model.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Pairs, 2)
	assert.Equal(t, "RSP", result.Joint)
	assert.Equal(t, 2, result.Pairs[0].Shift)
	assert.Equal(t, 8, result.Pairs[1].Shift)
	assert.InDelta(t, 0.005, result.MeanDt, 1e-6)

	_, err = os.Stat(config.DefaultDBPath())
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzeStoresRunAndHistoryLists(t *testing.T) {
	dir := isolateXDG(t)
	logPath := filepath.Join(dir, "sine.txt")
	_, err := execute(t, "generate", "--out", logPath, "--seed", "3")
	require.NoError(t, err)

	metricsPath := filepath.Join(dir, "sinecheck.prom")
	out, err := execute(t, "analyze", logPath, "--metrics", metricsPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Lag estimates")

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sinecheck_best_shift_samples")

	out, err = execute(t, "history", "--joint", "RSP")
	require.NoError(t, err)
	assert.Contains(t, out, "RSP")

	out, err = execute(t, "history", "--delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run 1")

	_, err = execute(t, "history", "--delete", "1")
	assert.Error(t, err)
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	dir := isolateXDG(t)
	logPath := filepath.Join(dir, "sine.txt")
	_, err := execute(t, "generate", "--out", logPath, "--seed", "1")
	require.NoError(t, err)

	_, err = execute(t, "analyze", logPath, "--format", "csv", "--no-store")
	assert.ErrorContains(t, err, "unknown --format")
}

func TestConfigFileOverridesDefaultsButNotFlags(t *testing.T) {
	dir := isolateXDG(t)
	logPath := filepath.Join(dir, "sine.txt")
	_, err := execute(t, "generate", "--out", logPath, "--seed", "5", "--quantum", "0")
	require.NoError(t, err)

	cfgPath := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("[analysis]\npairs = [\"cmd:ref\"]\n[output]\nformat = \"yaml\"\nstore = false\n"), 0o644))

	out, err := execute(t, "analyze", logPath, "--format", "json", "--log-level", "error")
	require.NoError(t, err)
	var result model.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Pairs, 1)

	_, err = os.Stat(config.DefaultDBPath())
	assert.True(t, os.IsNotExist(err))
}
