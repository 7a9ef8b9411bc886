package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCompression(t *testing.T) {
	tests := []struct {
		path string
		base string
		c    Compression
	}{
		{"database.toml", "database.toml", CompressionNone},
		{"database.toml.gz", "database.toml", CompressionGzip},
		{"out/db.json.zst", "out/db.json", CompressionZstd},
		{"db.yaml.xz", "db.yaml", CompressionXz},
	}

	for _, tt := range tests {
		base, c := SplitCompression(tt.path)
		assert.Equal(t, tt.base, base, tt.path)
		assert.Equal(t, tt.c, c, tt.path)
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("name = \"serde\"\n", 200))

	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionZstd, CompressionXz} {
		t.Run(c.String(), func(t *testing.T) {
			packed, err := Compress(data, c)
			require.NoError(t, err)
			if c != CompressionNone {
				assert.Less(t, len(packed), len(data))
			}

			unpacked, err := Decompress(packed, c)
			require.NoError(t, err)
			assert.Equal(t, data, unpacked)
		})
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blacklist")

	require.NoError(t, WriteFileAtomic(path, []byte("a\nb\n"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("c\n"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c\n", string(data))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Dir(path)))
}

func TestCalculateChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	sum, err := CalculateChecksums(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum.SHA256)
}
