package domain

import "strings"

// FieldMapping holds resolved column indices; -1 means the column is absent.
type FieldMapping struct {
	Latitude    int
	Longitude   int
	Description int
	Category    int
	Color       int
}

// claims reports whether column i is consumed by a role.
func (m FieldMapping) claims(i int) bool {
	return i == m.Latitude || i == m.Longitude || i == m.Description || i == m.Category || i == m.Color
}

// ResolveFields matches columns against the synonym lists. Latitude and
// longitude are required.
func ResolveFields(columns []string, syn FieldSynonyms) (FieldMapping, error) {
	m := FieldMapping{
		Latitude:    findFieldIndex(columns, syn.Latitude),
		Longitude:   findFieldIndex(columns, syn.Longitude),
		Description: findFieldIndex(columns, syn.Description),
		Category:    findFieldIndex(columns, syn.Category),
		Color:       findFieldIndex(columns, syn.Color),
	}

	var missing []string
	if m.Latitude == -1 {
		missing = append(missing, "latitude")
	}
	if m.Longitude == -1 {
		missing = append(missing, "longitude")
	}
	if len(missing) > 0 {
		return m, &MissingFieldError{Missing: missing, Available: columns}
	}
	return m, nil
}

// findFieldIndex returns the index of the first column matching the
// highest-priority synonym, ignoring case.
func findFieldIndex(columns, names []string) int {
	for _, name := range names {
		for i, col := range columns {
			if strings.EqualFold(col, name) {
				return i
			}
		}
	}
	return -1
}
