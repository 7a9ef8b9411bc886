package database

import (
	"testing"

	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/stretchr/testify/assert"
)

var (
	tokio = models.Crate{Name: "tokio", Version: "1.38.0", Description: "async runtime"}
	serde = models.Crate{Name: "serde", Version: "1.0.203", Description: "serialization"}
)

func TestSearch(t *testing.T) {
	crates := []models.Crate{tokio, serde}

	tests := []struct {
		name  string
		terms []string
		want  []models.Crate
	}{
		{"description match", []string{"async"}, []models.Crate{tokio}},
		{"upper-case term matches name", []string{"SER"}, []models.Crate{serde}},
		{"all terms somewhere", []string{"a", "e"}, []models.Crate{tokio, serde}},
		{"no terms", nil, []models.Crate{tokio, serde}},
		{"one term misses", []string{"async", "serial"}, []models.Crate{}},
		{"no match", []string{"database"}, []models.Crate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Search(crates, tt.terms))
		})
	}
}

func TestSearchDoesNotMutate(t *testing.T) {
	crates := []models.Crate{tokio, serde}
	_ = Search(crates, []string{"tokio"})
	assert.Equal(t, []models.Crate{tokio, serde}, crates)
}
