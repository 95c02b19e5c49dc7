package viewer

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/couchcryptid/search-layer-map/internal/domain"
)

// Popup is the info box bound to a marker.
type Popup struct {
	Title string      `json:"title"`
	Lines []PopupLine `json:"lines"`
}

// PopupLine is one label/value row of a popup.
type PopupLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<h4>{{.Title}}</h4>{{range .Lines}}<p><strong>{{.Label}}:</strong> {{.Value}}</p>{{end}}`,
))

// HTML renders the popup with all values escaped.
func (p Popup) HTML() string {
	var b strings.Builder
	if err := popupTmpl.Execute(&b, p); err != nil {
		return template.HTMLEscapeString(p.Title)
	}
	return b.String()
}

func popupFor(p domain.PointRecord) Popup {
	lines := make([]PopupLine, 0, 2+len(p.ExtraFields))
	lines = append(lines,
		PopupLine{Label: "Category", Value: string(p.Category)},
		PopupLine{Label: "Coordinates", Value: formatCoord(p.Latitude) + ", " + formatCoord(p.Longitude)},
	)
	for _, f := range p.ExtraFields {
		lines = append(lines, PopupLine{Label: f.Name, Value: domain.DisplayValue(f.Value)})
	}
	return Popup{Title: p.Description, Lines: lines}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
