// Package storage reads and writes the persisted crates database. The format
// follows the file extension (.toml, .yaml/.yml, .json), optionally wrapped
// in .gz, .zst or .xz compression.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/utils"
)

// Format is the serialization of the database file
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	FormatJSON
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "toml"
	}
}

// DetectFormat infers format and compression from path
func DetectFormat(path string) (Format, utils.Compression, error) {
	base, compression := utils.SplitCompression(path)

	switch strings.ToLower(filepath.Ext(base)) {
	case ".toml":
		return FormatTOML, compression, nil
	case ".yaml", ".yml":
		return FormatYAML, compression, nil
	case ".json":
		return FormatJSON, compression, nil
	default:
		return FormatTOML, compression, fmt.Errorf("unsupported database format %q", filepath.Ext(base))
	}
}

// Encode serializes crates for the given path
func Encode(path string, crates []models.Crate) ([]byte, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, &models.DatabaseError{Type: models.ErrInvalidConfig, Path: path, Err: err}
	}

	if crates == nil {
		crates = []models.Crate{}
	}
	file := models.CratesFile{Crates: crates}

	var data []byte
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(file)
	case FormatJSON:
		data, err = sonic.MarshalIndent(file, "", "  ")
	default:
		data, err = toml.Marshal(file)
	}
	if err != nil {
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to encode %s: %w", format, err),
		}
	}

	data, err = utils.Compress(data, compression)
	if err != nil {
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to compress with %s: %w", compression, err),
		}
	}
	return data, nil
}

// Decode parses data previously produced by Encode for the same path
func Decode(path string, data []byte) ([]models.Crate, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, &models.DatabaseError{Type: models.ErrInvalidConfig, Path: path, Err: err}
	}

	data, err = utils.Decompress(data, compression)
	if err != nil {
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to decompress %s: %w", compression, err),
		}
	}

	var file models.CratesFile
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	case FormatJSON:
		err = sonic.Unmarshal(data, &file)
	default:
		err = toml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to decode %s: %w", format, err),
		}
	}
	return file.Crates, nil
}

// Save writes the whole collection to path, atomically replacing the file
func Save(path string, crates []models.Crate) error {
	data, err := Encode(path, crates)
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to write database: %w", err),
		}
	}
	return nil
}

// Load reads the collection stored at path
func Load(path string) ([]models.Crate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("database not found, run update first: %w", err)
		}
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  err,
		}
	}
	return Decode(path, data)
}
