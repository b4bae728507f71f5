package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ListingIDField       = "ID"
	ListingEmployerField = "Employer"
)

// Listing is a job posting as consumed by the matching engine.
type Listing struct {
	ID             string     `mapstructure:"id" json:"id" validate:"required"`
	Title          string     `mapstructure:"title" json:"title,omitempty"`
	Employer       string     `mapstructure:"employer" json:"employer,omitempty"`
	URL            string     `mapstructure:"url" json:"url,omitempty"`
	Skills         []string   `mapstructure:"skills" json:"skills,omitempty"`
	Experience     Experience `mapstructure:"experience_years" json:"experience_years,omitempty"`
	Location       string     `mapstructure:"location" json:"location,omitempty"`
	EmploymentType string     `mapstructure:"employment_type" json:"employment_type,omitempty"`
	Featured       bool       `mapstructure:"featured" json:"featured,omitempty"`
}

type Listings struct {
	Items []*Listing `json:"items"`
}

type ExcludedListings struct {
	Items []*ExcludedListing
}

type ExcludedListing struct {
	ID         string
	URL        string
	Employer   string
	ExcludedAt time.Time
}

func (l *Listing) GetStringField(name string) string {
	switch name {
	case ListingIDField:
		return l.ID
	case ListingEmployerField:
		return l.Employer
	default:
		return ""
	}
}

func (l *Listings) Len() int {
	return len(l.Items)
}

func (l *Listings) FindByID(id string) *Listing {
	for _, listing := range l.Items {
		if listing.ID == id {
			return listing
		}
	}
	return nil
}

func (l *Listings) IDs() []string {
	ids := make([]string, 0, len(l.Items))
	for _, listing := range l.Items {
		ids = append(ids, listing.ID)
	}
	return ids
}

// Exclude removes listings whose field matches any of targets and returns
// the removed IDs. Employer names match case-insensitively. The relative order
// of the remaining listings is preserved.
func (l *Listings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	var excluded []string
	kept := l.Items[:0:0]
	for _, listing := range l.Items {
		if matchesAny(name, listing.GetStringField(name), targets) {
			excluded = append(excluded, listing.ID)
			continue
		}
		kept = append(kept, listing)
	}
	l.Items = kept

	return excluded
}

// Keep retains only the listings for which keep returns true and returns the
// removed IDs, preserving order.
func (l *Listings) Keep(keep func(*Listing) bool) []string {
	var excluded []string
	kept := l.Items[:0:0]
	for _, listing := range l.Items {
		if !keep(listing) {
			excluded = append(excluded, listing.ID)
			continue
		}
		kept = append(kept, listing)
	}
	l.Items = kept

	return excluded
}

func matchesAny(field, value string, targets []string) bool {
	for _, target := range targets {
		if field == ListingEmployerField {
			if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(target)) {
				return true
			}
			continue
		}
		if value == target {
			return true
		}
	}
	return false
}

// ReportByEmployer groups listings by employer. Scores, when provided, are
// included per listing ID.
func (l *Listings) ReportByEmployer(scores map[string]int) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, listing := range l.Items {
		key := listing.Employer
		if key == "" {
			key = "unknown employer"
		}

		entry := map[string]string{
			"id":              listing.ID,
			"title":           listing.Title,
			"url":             listing.URL,
			"location":        listing.Location,
			"employment type": listing.EmploymentType,
			"skills":          strings.Join(listing.Skills, ", "),
		}
		if score, ok := scores[listing.ID]; ok {
			entry["score"] = strconv.Itoa(score)
		}

		report[key] = append(report[key], entry)
	}
	return report
}

func (l *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (l *Listings) ToExcluded() *ExcludedListings {
	excluded := &ExcludedListings{}
	for _, listing := range l.Items {
		excluded.Items = append(excluded.Items, &ExcludedListing{
			ID:         listing.ID,
			URL:        listing.URL,
			Employer:   listing.Employer,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedListingsFromFile reads an exclude file. An empty file yields an
// empty list.
func GetExcludedListingsFromFile(path string) (*ExcludedListings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedListings{}, nil
	}

	var excluded ExcludedListings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedListings) Append(s *ExcludedListings) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedListings) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, listing := range e.Items {
		ids = append(ids, listing.ID)
	}
	return ids
}

func (e *ExcludedListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
