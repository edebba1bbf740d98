package postal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thomhuang/shipzone/internal/geo"
	"go.uber.org/zap"
)

// Format identifies the layout of a dataset payload.
type Format int

const (
	// FormatCSV is a comma separated table with a header row naming the columns.
	FormatCSV Format = iota
	// FormatGeoNames is the tab separated, headerless GeoNames postal dump.
	FormatGeoNames
)

func (f Format) String() string {
	switch f {
	case FormatGeoNames:
		return "geonames"
	default:
		return "csv"
	}
}

const (
	colZip                = "zip"
	colLatitude           = "latitude"
	colLongitude          = "longitude"
	colState              = "state"
	colCity               = "primary_city"
	colCountry            = "country"
	colShippingZone       = "shipping_zone"
	colZoneCost           = "zone_cost"
	colDistanceFromOrigin = "distance_from_origin"
)

var requiredColumns = []string{colZip, colLatitude, colLongitude, colState, colCity, colCountry}

// GeoNames dump layout
const (
	geoNamesFields    = 12
	geoNamesCountry   = 0
	geoNamesPostal    = 1
	geoNamesPlace     = 2
	geoNamesAdminCode = 4
	geoNamesLatitude  = 9
	geoNamesLongitude = 10
)

// LoadReport counts what happened to every row read from a dataset.
type LoadReport struct {
	Rows               int
	Loaded             int
	Malformed          int
	SkippedCountry     int
	SkippedCode        int
	SkippedCoordinates int
	Duplicates         int
}

// Skipped returns the dropped row counts keyed by reason.
func (r LoadReport) Skipped() map[string]int {
	return map[string]int{
		"malformed":   r.Malformed,
		"country":     r.SkippedCountry,
		"code":        r.SkippedCode,
		"coordinates": r.SkippedCoordinates,
		"duplicate":   r.Duplicates,
	}
}

func (r LoadReport) fields() []interface{} {
	return []interface{}{
		"rows", r.Rows,
		"loaded", r.Loaded,
		"malformed", r.Malformed,
		"skipped_country", r.SkippedCountry,
		"skipped_code", r.SkippedCode,
		"skipped_coordinates", r.SkippedCoordinates,
		"duplicates", r.Duplicates,
	}
}

// Parse reads every domestic row with valid coordinates from reader.
// Rows for other countries, with malformed codes or with unusable
// coordinates are skipped and counted in the report. The first occurrence
// of a code wins.
func Parse(reader io.Reader, format Format, domestic string) (map[string]*Record, LoadReport, error) {
	switch format {
	case FormatGeoNames:
		return parseGeoNames(reader, domestic)
	default:
		return parseCSV(reader, domestic)
	}
}

func parseCSV(reader io.Reader, domestic string) (map[string]*Record, LoadReport, error) {
	var report LoadReport

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, report, fmt.Errorf("%w: reading header: %v", ErrDatasetUnavailable, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, report, fmt.Errorf("%w: missing column %q", ErrDatasetUnavailable, name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make(map[string]*Record)
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.Rows++
				report.Malformed++
				zap.S().Named("postal").Debugf("could not read dataset row: %s", err)
				continue
			}
			return nil, report, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
		}
		report.Rows++

		if !strings.EqualFold(field(row, colCountry), domestic) {
			report.SkippedCountry++
			continue
		}

		code, ok := normalizeCode(field(row, colZip))
		if !ok {
			report.SkippedCode++
			continue
		}

		location, ok := parseLocation(field(row, colLatitude), field(row, colLongitude))
		if !ok {
			report.SkippedCoordinates++
			continue
		}

		if _, dup := records[code]; dup {
			report.Duplicates++
			continue
		}

		records[code] = &Record{
			Code:               code,
			City:               field(row, colCity),
			StateCode:          field(row, colState),
			Country:            strings.ToUpper(domestic),
			Location:           location,
			ShippingZone:       field(row, colShippingZone),
			ZoneCost:           optionalFloat(field(row, colZoneCost)),
			DistanceFromOrigin: optionalFloat(field(row, colDistanceFromOrigin)),
		}
		report.Loaded++
	}

	return records, report, nil
}

func parseGeoNames(reader io.Reader, domestic string) (map[string]*Record, LoadReport, error) {
	var report LoadReport

	// read tsv content from file reader
	csvReader := csv.NewReader(reader)
	csvReader.Comma = '\t'
	csvReader.FieldsPerRecord = geoNamesFields
	csvReader.LazyQuotes = true

	records := make(map[string]*Record)
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.Rows++
				report.Malformed++
				zap.S().Named("postal").Debugf("could not read geonames record: %s", err)
				continue
			}
			return nil, report, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
		}
		report.Rows++

		if !strings.EqualFold(row[geoNamesCountry], domestic) {
			report.SkippedCountry++
			continue
		}

		code, ok := normalizeCode(row[geoNamesPostal])
		if !ok {
			report.SkippedCode++
			continue
		}

		location, ok := parseLocation(row[geoNamesLatitude], row[geoNamesLongitude])
		if !ok {
			report.SkippedCoordinates++
			continue
		}

		if _, dup := records[code]; dup {
			report.Duplicates++
			continue
		}

		records[code] = &Record{
			Code:      code,
			City:      row[geoNamesPlace],
			StateCode: row[geoNamesAdminCode],
			Country:   strings.ToUpper(domestic),
			Location:  location,
		}
		report.Loaded++
	}

	return records, report, nil
}

// normalizeCode restores leading zeros lost by spreadsheet exports and
// rejects anything that is not a five digit code.
func normalizeCode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 5 {
		return "", false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", 5-len(raw)) + raw, true
}

func parseLocation(latRaw, lonRaw string) (geo.Point, bool) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return geo.Point{}, false
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return geo.Point{}, false
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return geo.Point{}, false
	}
	return p, true
}

func optionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
