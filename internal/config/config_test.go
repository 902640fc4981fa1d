package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFile(t *testing.T) {
	v, err := Load("")
	require.NoError(t, err)
	assert.False(t, v.IsSet("preset"))
	assert.Empty(t, v.GetString("preset"))
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("BIBTABLE_PRESET", "legacy")
	t.Setenv("BIBTABLE_BUNDLE_AUTOMATIC_TAGS", "true")

	v, err := Load("")
	require.NoError(t, err)
	assert.True(t, v.IsSet("preset"))
	assert.Equal(t, "legacy", v.GetString("preset"))
	assert.True(t, v.GetBool("bundle-automatic-tags"))
	assert.False(t, v.IsSet("expand-creators"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bibtable.yaml")
	content := "preset: spreadsheet\nautomatic-tag-delimiter: crlf\nexpand-creators: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet", v.GetString("preset"))
	assert.Equal(t, "crlf", v.GetString("automatic-tag-delimiter"))
	assert.True(t, v.GetBool("expand-creators"))
	assert.False(t, v.IsSet("format"))
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bibtable.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: ods\n"), 0o644))
	t.Setenv("BIBTABLE_FORMAT", "parquet")

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "parquet", v.GetString("format"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flags.String("preset", "", "")
	flags.Bool("expand-creators", false, "")
	flags.String("format", "", "")

	v, err := Load("")
	require.NoError(t, err)
	require.NoError(t, BindFlags(v, flags, "preset", "expand-creators", "format"))

	require.NoError(t, flags.Parse([]string{"--preset", "legacy", "--expand-creators=false"}))

	assert.True(t, v.IsSet("preset"))
	assert.Equal(t, "legacy", v.GetString("preset"))
	assert.True(t, v.IsSet("expand-creators"))
	assert.False(t, v.GetBool("expand-creators"))
	assert.False(t, v.IsSet("format"))

	assert.Error(t, BindFlags(v, flags, "no-such-flag"))
}
