package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// PlaceCategory defines one point-of-interest group: the map-data selectors
// that fetch it and the substrings that disqualify a fetched name. The
// exclusions are a precision heuristic, not a complete taxonomy.
type PlaceCategory struct {
	Name      string   `yaml:"name"`
	Selectors []string `yaml:"selectors"`
	Exclude   []string `yaml:"exclude"`
}

type categoryFile struct {
	Categories []PlaceCategory `yaml:"categories"`
}

var (
	categories   []PlaceCategory
	categoryLock sync.RWMutex
)

// DefaultCategories is used when no category file is present.
var DefaultCategories = []PlaceCategory{
	{
		Name:      "mall",
		Selectors: []string{"shop=mall", "shop=department_store"},
		Exclude:   []string{"7-eleven", "convenience", "mini mart", "minimart", "kiosk"},
	},
	{
		Name:      "hospital",
		Selectors: []string{"amenity=hospital", "amenity=clinic"},
		Exclude:   []string{"animal", "vet", "pet", "dental", "beauty", "skin"},
	},
	{
		Name:      "school",
		Selectors: []string{"amenity=school", "amenity=university", "amenity=college"},
		Exclude:   []string{"driving", "music", "tutor", "language", "cooking", "dance"},
	},
}

// LoadCategories reads the category configuration from a YAML file. The file
// being absent is not an error; the built-in defaults stay active.
func LoadCategories(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read category file: %v", err)
	}

	var parsed categoryFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse category file: %v", err)
	}
	if len(parsed.Categories) == 0 {
		return fmt.Errorf("category file defines no categories")
	}

	categoryLock.Lock()
	defer categoryLock.Unlock()
	categories = parsed.Categories
	return nil
}

// GetCategories returns the active category set.
func GetCategories() []PlaceCategory {
	categoryLock.RLock()
	defer categoryLock.RUnlock()

	if categories == nil {
		return DefaultCategories
	}
	out := make([]PlaceCategory, len(categories))
	copy(out, categories)
	return out
}

// Excluded reports whether a place name hits any of the category's denylist
// substrings, case-insensitively.
func (c PlaceCategory) Excluded(name string) bool {
	lower := strings.ToLower(name)
	for _, sub := range c.Exclude {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
