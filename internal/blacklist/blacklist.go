// Package blacklist keeps the user's list of crate names that should not be
// surfaced again. It is a plain file with one name per line, rewritten whole
// on every change. Callers must serialize Add calls themselves.
package blacklist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/utils"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the blacklist file used when none is configured
const DefaultPath = "blacklist"

// Read loads the blacklist stored at path. A missing file is an empty list.
// Blank lines and repeated names are skipped, first occurrence wins.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to read blacklist: %w", err),
		}
	}

	names := []string{}
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to parse blacklist: %w", err),
		}
	}

	return names, nil
}

// Add appends name to existing and persists the result to path. If name is
// already listed nothing is written and existing is returned unchanged.
func Add(path string, existing []string, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return existing, &models.DatabaseError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("blacklist name is empty"),
		}
	}
	if slices.Contains(existing, name) {
		logrus.Debugf("%s is already blacklisted", name)
		return existing, nil
	}

	updated := append(slices.Clone(existing), name)
	if err := write(path, updated); err != nil {
		return existing, err
	}

	logrus.Infof("Added %s to blacklist", name)
	return updated, nil
}

// Contains reports whether name is listed
func Contains(names []string, name string) bool {
	return slices.Contains(names, name)
}

func write(path string, names []string) error {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}

	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return &models.DatabaseError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to write blacklist: %w", err),
		}
	}
	return nil
}
