package chat

// Product categories recognized by the visual analysis step.
const (
	CategoryLuxury  = "luxury"
	CategoryCasual  = "casual"
	CategoryTech    = "tech"
	CategoryOrganic = "organic"
	CategoryMinimal = "minimal"
	CategoryBold    = "bold"
	CategoryNeutral = "neutral"
)

// KnownCategory reports whether the analysis category is one of the
// recognized values.
func KnownCategory(c string) bool {
	switch c {
	case CategoryLuxury, CategoryCasual, CategoryTech, CategoryOrganic,
		CategoryMinimal, CategoryBold, CategoryNeutral:
		return true
	}
	return false
}

// ProductAnalysis is the derived look of the uploaded product photo, computed
// once per reference selection and cached on the session.
type ProductAnalysis struct {
	Colors      []string    `json:"colors"`
	Category    string      `json:"category"`
	Composition Composition `json:"composition"`
}

// Composition describes where the product sits in frame and which zones are
// free for overlay text.
type Composition struct {
	ProductPosition string   `json:"product_position"`
	AvailableZones  []string `json:"available_zones"`
}
