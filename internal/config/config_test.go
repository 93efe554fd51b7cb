package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.SampleRows)
	assert.Equal(t, "mean", c.MissingMethod)
	assert.Equal(t, "iqr", c.OutlierMethod)
	assert.Equal(t, "standardize", c.ScaleMethod)
	assert.Equal(t, "public", c.PostgresSchema)
	assert.Equal(t, 500, c.InsertBatchSize)
	assert.Equal(t, "console", c.LogFormat)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("scale_method", "minmax"))
	require.NoError(t, c.Set("sample_rows", "12"))
	require.NoError(t, c.Set("postgres_dsn", "postgres://ann:secret@db:5432/lab"))
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".quickprep", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "normalize", again.ScaleMethod)
	assert.Equal(t, 12, again.SampleRows)
	dsn, err := again.Get("postgres_dsn")
	require.NoError(t, err)
	assert.Equal(t, "postgres://ann:****@db:5432/lab", dsn)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("missing_method: median\nmax_rows: 10\n"), 0o644))
	t.Setenv("QUICKPREP_MAX_ROWS", "25")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "median", c.MissingMethod)
	assert.Equal(t, 25, c.MaxRows)
}

func TestLoadRejectsBadMethod(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUICKPREP_OUTLIER_METHOD", "dbscan")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUICKPREP_DOTENV_PROBE=from-file\n"), 0o644))
	t.Setenv("QUICKPREP_DOTENV_PROBE", "")
	os.Unsetenv("QUICKPREP_DOTENV_PROBE")

	path, err := LoadDotenv(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env"), path)
	assert.Equal(t, "from-file", os.Getenv("QUICKPREP_DOTENV_PROBE"))
}

func TestSetRejectsInvalidValues(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("sample_rows", "-1"))
	assert.Error(t, c.Set("missing_method", "interpolate"))
	assert.Error(t, c.Set("log_format", "xml"))
	assert.Error(t, c.Set("nope", "1"))
	_, err := c.Get("nope")
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "", MaskDSN(""))
	assert.Equal(t, "postgres://u:****@h/db", MaskDSN("postgres://u:pw@h/db"))
	assert.Equal(t, "postgres://h/db", MaskDSN("postgres://h/db"))
	assert.Equal(t, "host=h user=u password=**** dbname=d", MaskDSN("host=h user=u password=pw dbname=d"))
}
