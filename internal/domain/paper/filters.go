package paper

import (
	"strconv"
	"strings"
)

// Filters narrows the candidate set before any scoring happens.
// Zero values mean "no constraint".
type Filters struct {
	Search   string `json:"search,omitempty"`
	Year     string `json:"year,omitempty"`
	YearFrom int    `json:"yearFrom,omitempty"`
	YearTo   int    `json:"yearTo,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Category string `json:"category,omitempty"`
	Journal  string `json:"journal,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// IsZero reports whether no constraint is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Matches reports whether the paper passes all set constraints.
// String constraints are case-insensitive substring matches.
func (f Filters) Matches(p *Paper) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(strings.Join([]string{p.Title, p.Authors, p.Abstract, p.Keywords}, " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if f.Year != "" && p.Year != f.Year {
		return false
	}
	if f.YearFrom > 0 || f.YearTo > 0 {
		year, err := strconv.Atoi(strings.TrimSpace(p.Year))
		if err != nil {
			return false
		}
		if f.YearFrom > 0 && year < f.YearFrom {
			return false
		}
		if f.YearTo > 0 && year > f.YearTo {
			return false
		}
	}
	if !containsFold(p.Subject, f.Subject) {
		return false
	}
	if !containsFold(p.Category, f.Category) {
		return false
	}
	if !containsFold(p.Journal, f.Journal) {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, tag := range p.Tags {
			if strings.EqualFold(tag, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(value, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}
