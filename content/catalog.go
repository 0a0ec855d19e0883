package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

const (
	IndustriesFile  = "industries.json"
	PlatformsFile   = "platforms.json"
	ComparisonsFile = "comparisons.json"
)

// Record is a catalog entry addressable by slug.
type Record interface {
	Key() string
	Group() string
	Validate() error
}

// LoadCatalog decodes a JSON array of records. A missing file is an empty
// catalog; a malformed record or a duplicated slug is an error.
func LoadCatalog[T Record](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", filepath.Base(path), i, err)
		}
		if _, dup := seen[r.Key()]; dup {
			return nil, fmt.Errorf("%s: duplicate slug %q", filepath.Base(path), r.Key())
		}
		seen[r.Key()] = struct{}{}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Find returns the record with the given slug.
func Find[T Record](records []T, slug string) (T, error) {
	for _, r := range records {
		if r.Key() == slug {
			return r, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%q: %w", slug, ErrNotFound)
}

// Filter keeps the records whose group equals group. An empty group keeps everything.
func Filter[T Record](records []T, group string) []T {
	if group == "" {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r.Group() == group {
			out = append(out, r)
		}
	}
	return out
}

// CategoryGroup is one category and its records.
type CategoryGroup[T Record] struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Items    []T    `json:"items"`
}

// GroupByCategory buckets records by Group(), "Other" when empty, largest group first.
func GroupByCategory[T Record](records []T) []CategoryGroup[T] {
	index := make(map[string]int)
	var groups []CategoryGroup[T]
	for _, r := range records {
		name := r.Group()
		if name == "" {
			name = "Other"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryGroup[T]{Category: name})
		}
		groups[i].Items = append(groups[i].Items, r)
		groups[i].Count++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}

var (
	nonDecimal = regexp.MustCompile(`[^0-9.]`)
	nonDigit   = regexp.MustCompile(`[^0-9]`)
)

// marketSizeValue keeps digits and dots, so "$1.2T" and "$1.2B" compare equal.
func marketSizeValue(s string) float64 {
	v, err := strconv.ParseFloat(nonDecimal.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func userBaseValue(s string) int64 {
	v, err := strconv.ParseInt(nonDigit.ReplaceAllString(s, ""), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// TopIndustries returns the n industries with the largest market size figure.
func TopIndustries(industries []Industry, n int) []Industry {
	sorted := append([]Industry(nil), industries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return marketSizeValue(sorted[i].MarketSize) > marketSizeValue(sorted[j].MarketSize)
	})
	return sorted[:min(n, len(sorted))]
}

// TopPlatforms returns the n platforms with the largest user base figure.
func TopPlatforms(platforms []Platform, n int) []Platform {
	sorted := append([]Platform(nil), platforms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return userBaseValue(sorted[i].UserBase) > userBaseValue(sorted[j].UserBase)
	})
	return sorted[:min(n, len(sorted))]
}

// Catalog reads the catalog files from a data directory on every call.
type Catalog struct {
	dir string
}

func NewCatalog(dataDir string) *Catalog {
	return &Catalog{dir: dataDir}
}

func (c *Catalog) Industries() ([]Industry, error) {
	return LoadCatalog[Industry](filepath.Join(c.dir, IndustriesFile))
}

func (c *Catalog) Platforms() ([]Platform, error) {
	return LoadCatalog[Platform](filepath.Join(c.dir, PlatformsFile))
}

func (c *Catalog) Comparisons() ([]Comparison, error) {
	return LoadCatalog[Comparison](filepath.Join(c.dir, ComparisonsFile))
}
