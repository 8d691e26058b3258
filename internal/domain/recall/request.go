package recall

import (
	"strings"

	"github.com/refstack/paperdex/internal/domain/paper"
)

// DefaultPageSize is used when the caller supplies none.
const DefaultPageSize = 20

// Request is a recall search request.
type Request struct {
	Query            string
	Filters          paper.Filters
	Profile          string
	SemanticEnabled  bool
	MinScoreOverride *float64
	Page             int
	PageSize         int
}

// Normalize trims the query, clamps pagination, and resolves the effective
// profile. A MinScoreOverride is clamped to [0,1] and replaces the profile's
// semantic threshold.
func (r *Request) Normalize() Profile {
	r.Query = strings.TrimSpace(r.Query)
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	profile := ProfileByName(r.Profile)
	r.Profile = profile.Name
	if r.MinScoreOverride != nil {
		override := *r.MinScoreOverride
		if override < 0 {
			override = 0
		}
		if override > 1 {
			override = 1
		}
		profile.MinScore = override
	}
	return profile
}
