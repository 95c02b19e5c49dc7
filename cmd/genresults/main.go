// Command genresults converts a CSV export of search results into the
// row-major result-set JSON accepted by POST /api/v1/results and the Kafka
// source topic. It classifies the output with the domain package so the
// printed summary matches what the map will draw.
//
// Usage:
//
//	go run ./cmd/genresults \
//	  -csv exports/pa_facilities.csv \
//	  -out internal/pipeline/testdata/search_results.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/search-layer-map/internal/config"
	"github.com/couchcryptid/search-layer-map/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to the CSV export (header row required)")
	outPath := flag.String("out", "", "output path for the result-set JSON fixture")
	catalogPath := flag.String("catalog", "", "optional YAML layer catalog used for the summary")
	flag.Parse()

	if *csvPath == "" || *outPath == "" {
		flag.Usage()
		return errors.New("missing required flags: -csv, -out")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rs, err := convert(f)
	if err != nil {
		return fmt.Errorf("converting %s: %w", *csvPath, err)
	}
	log.Printf("read %d columns, %d rows", len(rs.Fields), len(rs.Rows))

	if err := writeJSON(*outPath, rs); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *outPath)

	catalog, err := config.LoadCatalog(&config.Config{LayerCatalogPath: *catalogPath})
	if err != nil {
		return err
	}
	cls, err := domain.Classify(rs, catalog)
	if err != nil {
		log.Printf("warning: fixture does not render: %v", err)
		return nil
	}
	printStats(cls, catalog)
	return nil
}

// convert reads a CSV table. Empty cells become null and numeric cells
// become JSON numbers; everything else stays a string.
func convert(r io.Reader) (domain.ResultSet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return domain.ResultSet{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return domain.ResultSet{}, errors.New("no data rows")
	}

	header := rows[0]
	rs := domain.ResultSet{
		Fields: make([]domain.Field, len(header)),
		Rows:   make([][]any, 0, len(rows)-1),
	}
	for i, h := range header {
		rs.Fields[i] = domain.Field{Name: strings.TrimSpace(h)}
	}

	for _, row := range rows[1:] {
		values := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				values[i] = cellValue(row[i])
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	return rs, nil
}

func cellValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(s)
	}
	return s
}

func writeJSON(path string, rs domain.ResultSet) error {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(cls domain.Classification, catalog *domain.Catalog) {
	fmt.Printf("\nRows: %d total, %d valid, %d dropped\n", cls.TotalRows, cls.ValidRows, cls.DroppedRows)

	counts := cls.Counts()
	cats := make([]domain.Category, 0, len(counts))
	for cat := range counts {
		cats = append(cats, cat)
	}
	// Catalog layers first, in catalog order, then custom categories by name.
	rank := func(cat domain.Category) int {
		if p := catalog.Position(cat); p >= 0 {
			return p
		}
		return len(catalog.Layers())
	}
	slices.SortFunc(cats, func(a, b domain.Category) int {
		if d := rank(a) - rank(b); d != 0 {
			return d
		}
		return strings.Compare(string(a), string(b))
	})

	fmt.Println("\nLayers:")
	for _, cat := range cats {
		fmt.Printf("  %-28s %5d\n", catalog.Label(cat), counts[cat])
	}
}
