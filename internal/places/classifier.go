package places

import "strings"

// Default keyword lists for residential classification. Exclusions always
// win over inclusions, so a "hotel apartments" listing is rejected.
var (
	DefaultResidentialKeywords = []string{
		"apartment",
		"apartments",
		"apartment complex",
		"condo",
		"condominium",
		"residence",
		"residences",
		"residential",
		"complex",
		"towers",
		"village",
		"loft",
		"lofts",
		"housing",
		"manor",
		"court",
		"plaza",
		"flats",
		"townhome",
		"townhouse",
	}

	DefaultExclusionKeywords = []string{
		"hotel",
		"motel",
		"hostel",
		"resort",
		"hospital",
		"clinic",
		"school",
		"university",
		"college",
		"restaurant",
		"cafe",
		"office",
		"church",
		"temple",
		"mosque",
		"warehouse",
		"storage",
		"parking",
		"garage",
		"dealership",
		"mall",
	}

	// residentialTypes are provider category tags that count as an
	// inclusion signal on their own.
	residentialTypes = map[string]bool{
		"apartment_complex":   true,
		"apartment_building":  true,
		"condominium_complex": true,
		"housing_complex":     true,
		"real_estate_agency":  false, // agencies list housing but are not housing
	}

	// excludedTypes are category tags that reject a result outright.
	excludedTypes = map[string]bool{
		"lodging":                 true,
		"hospital":                true,
		"school":                  true,
		"restaurant":              true,
		"church":                  true,
		"parking":                 true,
		"storage":                 true,
		"car_dealer":              true,
		"shopping_mall":           true,
		"movie_theater":           true,
		"gas_station":             true,
		"local_government_office": true,
	}
)

// ClassifierConfig holds configuration for the residential classifier.
type ClassifierConfig struct {
	// IncludeKeywords are residential-indicator terms.
	// If empty, DefaultResidentialKeywords is used.
	IncludeKeywords []string

	// ExcludeKeywords reject a result regardless of inclusion matches.
	// If empty, DefaultExclusionKeywords is used.
	ExcludeKeywords []string
}

// Classifier decides whether a raw search hit represents residential
// housing. It is a conservative keyword heuristic: missing a real
// apartment building is preferred over surfacing a hotel as housing.
type Classifier struct {
	include []string
	exclude []string
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	include := cfg.IncludeKeywords
	if len(include) == 0 {
		include = DefaultResidentialKeywords
	}
	exclude := cfg.ExcludeKeywords
	if len(exclude) == 0 {
		exclude = DefaultExclusionKeywords
	}
	return &Classifier{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
}

// IsResidential reports whether the place looks like apartment or
// residential housing. Exclusion matches always win.
func (c *Classifier) IsResidential(p *RawPlace) bool {
	text := strings.ToLower(p.Name + " " + p.Vicinity)

	for _, t := range p.Types {
		if excludedTypes[t] {
			return false
		}
	}
	for _, kw := range c.exclude {
		if strings.Contains(text, kw) {
			return false
		}
	}

	for _, t := range p.Types {
		if residentialTypes[t] {
			return true
		}
	}
	for _, kw := range c.include {
		if strings.Contains(text, kw) {
			return true
		}
	}

	return false
}

// Filter returns the subset of places classified as residential,
// preserving order.
func (c *Classifier) Filter(in []RawPlace) []RawPlace {
	out := make([]RawPlace, 0, len(in))
	for i := range in {
		if c.IsResidential(&in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
