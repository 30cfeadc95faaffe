package etl

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"locator/internal/errors"
)

// Canonical column names written by the loader.
const (
	ColumnPostcode  = "Postcode"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnCounty    = "County"
	ColumnTown      = "Town"
	ColumnStreet1   = "Street1"
)

// columnRenames maps export headers onto the canonical coordinate columns.
var columnRenames = map[string]string{
	"EXTRA_Decimal degrees latitude":  ColumnLatitude,
	"EXTRA_Decimal degrees longitude": ColumnLongitude,
}

// CSVReader streams normalized location records from a postcode export.
type CSVReader struct {
	reader  *csv.Reader
	columns []string
	line    int

	postcodeIdx  int
	latitudeIdx  int
	longitudeIdx int

	// InvalidCoordinates counts coordinate cells that were not numbers.
	InvalidCoordinates int64
}

// NewCSVReader reads the header row and resolves the key columns.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if renamed, ok := columnRenames[name]; ok {
			name = renamed
		}
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return nil, errors.Errorf("invalid CSV header: empty or duplicate column %q at position %d", name, i+1)
		}
		seen[key] = true
		columns[i] = name
	}

	cr := &CSVReader{
		reader:       reader,
		columns:      columns,
		line:         1,
		postcodeIdx:  indexOf(columns, ColumnPostcode),
		latitudeIdx:  indexOf(columns, ColumnLatitude),
		longitudeIdx: indexOf(columns, ColumnLongitude),
	}

	for name, idx := range map[string]int{
		ColumnPostcode:  cr.postcodeIdx,
		ColumnLatitude:  cr.latitudeIdx,
		ColumnLongitude: cr.longitudeIdx,
	} {
		if idx < 0 {
			return nil, errors.Errorf("invalid CSV header: missing %s column", name)
		}
	}

	// Canonical spelling for the key columns regardless of header case.
	columns[cr.postcodeIdx] = ColumnPostcode
	columns[cr.latitudeIdx] = ColumnLatitude
	columns[cr.longitudeIdx] = ColumnLongitude

	return cr, nil
}

// Columns returns the normalized header.
func (r *CSVReader) Columns() []string {
	return r.columns
}

// IsCoordinate reports whether column holds a coordinate.
func (r *CSVReader) IsCoordinate(column int) bool {
	return column == r.latitudeIdx || column == r.longitudeIdx
}

// Next returns the next record aligned with Columns, or io.EOF.
// Postcodes are trimmed and uppercased, coordinates parsed to float64 or nil,
// and every other cell kept as text with missing cells read as "".
func (r *CSVReader) Next() ([]any, error) {
	record, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid CSV at line %d", r.line+1)
	}
	r.line++

	values := make([]any, len(r.columns))
	for i := range r.columns {
		cell := ""
		if i < len(record) {
			cell = strings.TrimSpace(record[i])
		}

		switch i {
		case r.postcodeIdx:
			values[i] = strings.ToUpper(cell)
		case r.latitudeIdx, r.longitudeIdx:
			values[i] = r.parseCoordinate(cell)
		default:
			values[i] = cell
		}
	}

	return values, nil
}

// Line returns the number of lines consumed, header included.
func (r *CSVReader) Line() int {
	return r.line
}

func (r *CSVReader) parseCoordinate(cell string) any {
	if cell == "" {
		return nil
	}

	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		r.InvalidCoordinates++

		return nil
	}

	return value
}

func indexOf(columns []string, name string) int {
	for i, column := range columns {
		if strings.EqualFold(column, name) {
			return i
		}
	}

	return -1
}
