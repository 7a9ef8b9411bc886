package database

import (
	"strings"

	"github.com/sigmaSd/rustman-database/internal/models"
)

// Search returns the crates matching every term, case-insensitively, in
// either the name or the description. No terms matches everything.
func Search(crates []models.Crate, terms []string) []models.Crate {
	needles := make([]string, len(terms))
	for i, term := range terms {
		needles[i] = strings.ToLower(term)
	}

	matches := make([]models.Crate, 0)
	for _, c := range crates {
		if c.Contains(needles) {
			matches = append(matches, c)
		}
	}
	return matches
}
