package models

import "strings"

// Crate is one package entry of the registry snapshot. Name and Description
// are stored lower-cased; Version is never empty.
type Crate struct {
	Name        string `toml:"name" yaml:"name" json:"name"`
	Version     string `toml:"version" yaml:"version" json:"version"`
	Description string `toml:"description" yaml:"description" json:"description"`
}

// NewCrate normalizes raw registry fields into a Crate
func NewCrate(name, version, description string) Crate {
	return Crate{
		Name:        strings.ToLower(name),
		Version:     version,
		Description: strings.ToLower(description),
	}
}

// Contains reports whether every needle is a substring of the name or the
// description. Needles must already be lower-cased.
func (c Crate) Contains(needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(c.Name, needle) && !strings.Contains(c.Description, needle) {
			return false
		}
	}
	return true
}

// CratesFile is the persisted shape of the database: a single crates field.
type CratesFile struct {
	Crates []Crate `toml:"crates" yaml:"crates" json:"crates"`
}
