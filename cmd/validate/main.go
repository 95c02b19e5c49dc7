// Command validate checks result-set fixtures before they are replayed
// against the layer map. Each file is decoded exactly as the pipeline does,
// classified with the configured catalog, and rendered through a real view
// controller so the drawn layers can be compared with the classification.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catalog deploy/layers.yaml \
//	  internal/pipeline/testdata/search_results.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/search-layer-map/internal/adapter/geojson"
	"github.com/couchcryptid/search-layer-map/internal/config"
	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/layerstate"
	"github.com/couchcryptid/search-layer-map/internal/observability"
	"github.com/couchcryptid/search-layer-map/internal/pipeline"
	"github.com/couchcryptid/search-layer-map/internal/viewer"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	strict       bool
	allowDropped bool
}

func main() {
	catalogPath := flag.String("catalog", "", "optional YAML layer catalog")
	strict := flag.Bool("strict", false, "fail on categories that are not in the catalog")
	allowDropped := flag.Bool("allow-dropped", false, "do not fail on rows with invalid coordinates")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	catalog, err := config.LoadCatalog(&config.Config{LayerCatalogPath: *catalogPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	opts := options{strict: *strict, allowDropped: *allowDropped}
	code := 0
	for _, path := range flag.Args() {
		if validateFile(os.Stdout, path, catalog, opts) != 0 {
			code = 1
		}
	}
	os.Exit(code)
}

// validateFile runs every phase against one fixture and prints a report.
// Returns 0 when all phases pass.
func validateFile(out io.Writer, path string, catalog *domain.Catalog, opts options) int {
	fmt.Fprintf(out, "=== %s ===\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	rs, err := pipeline.DecodeResultSet(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	cls, clsErr := domain.Classify(rs, catalog)
	phases := []*phase{
		validateSchema(rs, catalog),
		validateCoordinates(cls, clsErr, opts),
		validateCategories(out, rs, catalog, opts),
	}
	if clsErr == nil {
		phases = append(phases, validateRender(rs, cls, catalog))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}
	if clsErr == nil {
		fmt.Fprintf(out, "\nRows: %d total, %d valid, %d dropped, %d layers\n",
			cls.TotalRows, cls.ValidRows, cls.DroppedRows, len(cls.Order))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Schema ──
// Column names are unique and non-empty, rows match the field count, and
// the coordinate columns resolve.

func validateSchema(rs domain.ResultSet, catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 1: Schema"}

	if len(rs.Fields) == 0 {
		p.errorf("no fields")
		return p
	}

	seen := make(map[string]int, len(rs.Fields))
	for i, name := range rs.ColumnNames() {
		if name == "" {
			p.errorf("field %d has an empty name", i)
			continue
		}
		if prev, ok := seen[name]; ok {
			p.errorf("field %q appears at columns %d and %d", name, prev, i)
		}
		seen[name] = i
	}

	for i, row := range rs.Rows {
		if len(row) != len(rs.Fields) {
			p.errorf("row %d has %d values, expected %d", i, len(row), len(rs.Fields))
		}
	}

	if _, err := domain.ResolveFields(rs.ColumnNames(), catalog.Fields()); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// ── Phase 2: Coordinates ──
// Every row carries a usable latitude and longitude.

func validateCoordinates(cls domain.Classification, clsErr error, opts options) *phase {
	p := &phase{name: "Phase 2: Coordinates"}

	if clsErr != nil {
		p.errorf("%s: %v", domain.ErrorKind(clsErr), clsErr)
		return p
	}
	if cls.DroppedRows > 0 && !opts.allowDropped {
		p.errorf("%d of %d rows have invalid or out-of-range coordinates", cls.DroppedRows, cls.TotalRows)
	}
	return p
}

// ── Phase 3: Categories ──
// Category values resolve to catalog layers. Custom categories are listed
// and only fail in strict mode.

func validateCategories(out io.Writer, rs domain.ResultSet, catalog *domain.Catalog, opts options) *phase {
	p := &phase{name: "Phase 3: Categories"}

	mapping, err := domain.ResolveFields(rs.ColumnNames(), catalog.Fields())
	if err != nil || mapping.Category == -1 {
		return p
	}

	custom := make(map[domain.Category]int)
	var order []domain.Category
	for _, row := range rs.Rows {
		if mapping.Category >= len(row) {
			continue
		}
		raw, _ := row[mapping.Category].(string)
		cat := catalog.NormalizeCategory(raw)
		if catalog.Known(cat) {
			continue
		}
		if custom[cat] == 0 {
			order = append(order, cat)
		}
		custom[cat]++
	}

	for _, cat := range order {
		if opts.strict {
			p.errorf("category %q (%d rows) is not in the catalog", cat, custom[cat])
			continue
		}
		fmt.Fprintf(out, "  note: custom category %q (%d rows) uses the fallback layer style\n", cat, custom[cat])
	}
	return p
}

// ── Phase 4: Render ──
// The controller draws one marker per valid row and the control panel
// counts match the classification.

func validateRender(rs domain.ResultSet, cls domain.Classification, catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 4: Render"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	surface := geojson.NewSurface(viewer.DefaultAnchor)
	ctrl := viewer.NewController(catalog, layerstate.New(catalog), surface,
		viewer.Options{Clock: clockwork.NewFakeClock(), RowCap: len(rs.Rows)},
		logger, observability.NewMetricsForTesting())
	defer ctrl.Close()

	res, err := ctrl.Render(context.Background(), rs)
	if err != nil {
		p.errorf("render: %v", err)
		return p
	}

	if n := len(surface.FeatureCollection().Features); n != cls.ValidRows {
		p.errorf("surface has %d features, expected %d", n, cls.ValidRows)
	}

	counts := cls.Counts()
	for _, item := range res.Controls.Items {
		if item.Count != counts[item.Category] {
			p.errorf("control %q shows %d, classified %d", item.Category, item.Count, counts[item.Category])
		}
		delete(counts, item.Category)
	}
	for cat, n := range counts {
		p.errorf("category %q (%d points) has no control row", cat, n)
	}
	return p
}
