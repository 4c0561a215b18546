package provision

import (
	"fmt"

	"github.com/perchdesk/perch/internal/domain"
)

// Mapper converts provision entries into config team records
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapTeams converts the provision file into team records ready to merge
// into a config. Entries without a name, without a URL, or with a URL
// that stays invalid after cleanup are skipped; one admin typo must not
// block the remaining presets.
func (m *Mapper) MapTeams(f File) ([]map[string]any, error) {
	teams := make([]map[string]any, 0, len(f.Servers))

	for _, entry := range f.Servers {
		if entry.Name == "" || entry.URL == "" {
			continue
		}

		cleaned := domain.CleanURL(entry.URL)
		if !domain.IsValidURL(cleaned) {
			continue
		}

		teams = append(teams, map[string]any{
			"name": entry.Name,
			"url":  cleaned,
		})
	}

	if len(teams) == 0 {
		return nil, fmt.Errorf("no valid servers found in provision file")
	}

	return teams, nil
}
