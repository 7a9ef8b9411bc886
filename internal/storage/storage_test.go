package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []models.Crate{
	{Name: "tokio", Version: "1.38.0", Description: "async runtime"},
	{Name: "serde", Version: "1.0.203", Description: "serialization"},
	{Name: "quote", Version: "1.0.36", Description: ""},
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path        string
		format      Format
		compression utils.Compression
	}{
		{"database.toml", FormatTOML, utils.CompressionNone},
		{"database.yml", FormatYAML, utils.CompressionNone},
		{"db.YAML.gz", FormatYAML, utils.CompressionGzip},
		{"db.json.zst", FormatJSON, utils.CompressionZstd},
		{"db.toml.xz", FormatTOML, utils.CompressionXz},
	}

	for _, tt := range tests {
		format, compression, err := DetectFormat(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.format, format, tt.path)
		assert.Equal(t, tt.compression, compression, tt.path)
	}

	_, _, err := DetectFormat("database.csv")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"db.toml", "db.yaml", "db.json", "db.toml.gz", "db.json.zst", "db.yaml.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, sample))

			crates, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sample, crates)
		})
	}
}

func TestSaveTOMLLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.toml")
	require.NoError(t, Save(path, sample[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.Contains(content, "[[crates]]"), content)
	assert.Contains(t, content, "name = 'tokio'")
	assert.Contains(t, content, "version = '1.38.0'")
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.toml")
	require.NoError(t, Save(path, sample))
	require.NoError(t, Save(path, sample[2:]))

	crates, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sample[2:], crates)
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, Save(path, nil))

	crates, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, crates)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrFileOp))
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.toml.gz")
	require.NoError(t, os.WriteFile(path, []byte("definitely not gzip"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrFileOp))
}

func TestSaveUnsupportedFormat(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "database.csv"), sample)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrInvalidConfig))
}
