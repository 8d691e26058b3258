package recall

// Profile names.
const (
	ProfileLoose    = "loose"
	ProfileBalanced = "balanced"
	ProfileStrict   = "strict"
)

// Weights blends the normalized per-signal maxima into the combined score.
type Weights struct {
	BM25       float64
	CosMain    float64
	CosConcept float64
	TagBoost   float64
}

// Profile is a named recall preset trading breadth for precision.
type Profile struct {
	Name         string
	TopK         int
	Rewrites     int
	RelatedTerms int
	MinScore     float64
	MaxGenerate  int
	Weights      Weights
}

// ProfileByName returns the preset for the given name.
// Unknown names fall back to balanced.
func ProfileByName(name string) Profile {
	switch name {
	case ProfileLoose:
		return Profile{
			Name: ProfileLoose, TopK: 600, Rewrites: 6, RelatedTerms: 20,
			MinScore: 0.20, MaxGenerate: 120,
			Weights: Weights{BM25: 0.25, CosMain: 0.35, CosConcept: 0.35, TagBoost: 0.20},
		}
	case ProfileStrict:
		return Profile{
			Name: ProfileStrict, TopK: 150, Rewrites: 3, RelatedTerms: 6,
			MinScore: 0.45, MaxGenerate: 60,
			Weights: Weights{BM25: 0.35, CosMain: 0.25, CosConcept: 0.20, TagBoost: 0.25},
		}
	default:
		return Profile{
			Name: ProfileBalanced, TopK: 300, Rewrites: 5, RelatedTerms: 12,
			MinScore: 0.30, MaxGenerate: 90,
			Weights: Weights{BM25: 0.30, CosMain: 0.30, CosConcept: 0.25, TagBoost: 0.20},
		}
	}
}
