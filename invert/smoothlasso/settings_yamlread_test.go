package smoothlasso

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specinv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
max_iterations: 2000
tolerance: 1.0e-6
nonnegative: false
folds: 5
jobs: 3
`)
	c, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, c.MaxIterations)
	assert.Equal(t, 1e-6, c.Tolerance)
	assert.False(t, c.NonNegative)
	assert.Equal(t, 5, c.Folds)
	assert.Equal(t, 3, c.Jobs)
}

func TestLoadSettingsDefaultsForOmittedFields(t *testing.T) {
	path := writeSettings(t, "folds: 4\n")
	c, err := LoadSettings(path)
	require.NoError(t, err)

	def := DefaultSettings()
	assert.Equal(t, def.MaxIterations, c.MaxIterations)
	assert.Equal(t, def.Tolerance, c.Tolerance)
	assert.Equal(t, 4, c.Folds)
}

func TestLoadSettingsValidation(t *testing.T) {
	for name, body := range map[string]string{
		"iterations": "max_iterations: -1\n",
		"tolerance":  "tolerance: 0\n",
		"folds":      "folds: 1\n",
		"jobs":       "jobs: -2\n",
	} {
		path := writeSettings(t, body)
		_, err := LoadSettings(path)
		assert.Error(t, err, name)
	}

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadSettings(writeSettings(t, "max_iterations: [nope\n"))
	assert.Error(t, err)
}

func TestInitSettings(t *testing.T) {
	defer settingsValue.Store(DefaultSettings()) // restore process defaults

	path := writeSettings(t, "max_iterations: 1234\nfolds: 3\n")
	require.NoError(t, InitSettings(path))

	c := CurrentSettings()
	assert.Equal(t, 1234, c.MaxIterations)
	assert.Equal(t, 3, c.Folds)
}

func TestCurrentSettingsDefault(t *testing.T) {
	// 未初始化 (或已恢复默认) 时返回 DefaultSettings
	c := CurrentSettings()
	assert.Positive(t, c.MaxIterations)
	assert.Positive(t, c.Tolerance)
}
