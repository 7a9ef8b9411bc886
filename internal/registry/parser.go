package registry

import (
	"fmt"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/sigmaSd/rustman-database/internal/models"
)

// MaxCratesPerPage is the number of candidate slots read from one page
const MaxCratesPerPage = models.PerPage

// nullVersion is how a missing max_version reads once stringified
const nullVersion = "null"

type listingPage struct {
	Crates *[]listingCrate `json:"crates"`
}

type listingCrate struct {
	Name        *string `json:"name"`
	MaxVersion  *string `json:"max_version"`
	Description *string `json:"description"`
}

// ParsePage decodes one listing response body into crates. Candidates
// without a max_version are dropped; the number dropped is returned too.
func ParsePage(body []byte) ([]models.Crate, int, error) {
	if !utf8.Valid(body) {
		return nil, 0, fmt.Errorf("response body is not valid UTF-8")
	}

	var page listingPage
	if err := sonic.Unmarshal(body, &page); err != nil {
		return nil, 0, fmt.Errorf("failed to decode listing: %w", err)
	}
	if page.Crates == nil {
		return nil, 0, fmt.Errorf("listing has no crates array")
	}

	candidates := *page.Crates
	if len(candidates) > MaxCratesPerPage {
		candidates = candidates[:MaxCratesPerPage]
	}

	crates := make([]models.Crate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		version := deref(c.MaxVersion)
		if version == "" || version == nullVersion {
			dropped++
			continue
		}
		crates = append(crates, models.NewCrate(deref(c.Name), version, deref(c.Description)))
	}

	return crates, dropped, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
