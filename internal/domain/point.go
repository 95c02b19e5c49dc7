package domain

// ExtraField is a column carried through for display, in column order.
type ExtraField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// PointRecord is one classified, validated row.
type PointRecord struct {
	Latitude    float64      `json:"lat"`
	Longitude   float64      `json:"lon"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	CustomColor string       `json:"custom_color,omitempty"` // empty when the row has no color
	ExtraFields []ExtraField `json:"fields,omitempty"`
}

// Classification is the classifier output for one result set.
type Classification struct {
	Buckets map[Category][]PointRecord
	// Order lists categories in the order they were first seen.
	Order []Category

	TotalRows   int
	ValidRows   int
	DroppedRows int
}

// Points returns the bucket for cat.
func (c Classification) Points(cat Category) []PointRecord {
	return c.Buckets[cat]
}

// Counts returns the number of points per category.
func (c Classification) Counts() map[Category]int {
	counts := make(map[Category]int, len(c.Buckets))
	for cat, points := range c.Buckets {
		counts[cat] = len(points)
	}
	return counts
}
