// Package ratecard renders the zone table and sample quotes as a spreadsheet.
package ratecard

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/xuri/excelize/v2"
)

const (
	ZonesSheet  = "Zones"
	RatesSheet  = "Rates"
	QuotesSheet = "Quotes"
)

// DefaultDistances are the sample distances priced on the quotes sheet.
var DefaultDistances = []float64{0, 25, 50, 100, 150, 200, 300, 450, 600, 800, 1000, 1200, 1400, 1600, 1800, 2000, 2500, 3000, 4000, 5000}

var (
	zoneHeaders  = []string{"Zone", "From (mi)", "To (mi)", "Base ($)", "Rate ($/mi)"}
	rateHeaders  = []string{"Component", "Value"}
	quoteHeaders = []string{"Distance (mi)", "Zone", "Base ($)", "Zone cost ($)", "Surcharge ($)", "Per mile ($)", "Distance charge ($)", "Total ($)"}
)

// Write prices every distance with estimator and writes the workbook to w.
func Write(w io.Writer, estimator *shipping.Estimator, distances []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ZonesSheet); err != nil {
		return errors.Wrap(err, "renaming default sheet")
	}
	if _, err := f.NewSheet(RatesSheet); err != nil {
		return errors.Wrap(err, "creating rates sheet")
	}
	if _, err := f.NewSheet(QuotesSheet); err != nil {
		return errors.Wrap(err, "creating quotes sheet")
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeZones(f, estimator.Curve()); err != nil {
		return errors.Wrap(err, "writing zones sheet")
	}
	if err := writeRates(f, estimator.Rates()); err != nil {
		return errors.Wrap(err, "writing rates sheet")
	}
	if err := writeQuotes(f, estimator, distances); err != nil {
		return errors.Wrap(err, "writing quotes sheet")
	}

	for sheet, headers := range map[string][]string{ZonesSheet: zoneHeaders, RatesSheet: rateHeaders, QuotesSheet: quoteHeaders} {
		last, _ := excelize.ColumnNumberToName(len(headers))
		if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeZones(f *excelize.File, curve shipping.ZoneCostCurve) error {
	if err := f.SetSheetRow(ZonesSheet, "A1", &zoneHeaders); err != nil {
		return err
	}
	lower := 0.0
	for i, s := range curve {
		var upper interface{} = s.UpperBound
		if math.IsInf(s.UpperBound, 1) {
			upper = "and above"
		}
		row := []interface{}{s.Label, lower, upper, s.Base, s.Rate}
		if err := f.SetSheetRow(ZonesSheet, cell(i+2), &row); err != nil {
			return err
		}
		lower = s.UpperBound
	}
	return nil
}

func writeRates(f *excelize.File, rates shipping.Rates) error {
	rows := [][]interface{}{
		{"Carrier base", rates.CarrierBase},
		{"Fixed overhead", rates.FixedOverhead},
		{"Flat surcharge", rates.FlatSurcharge},
		{"Per mile rate", rates.PerMileRate},
		{"Distance charge rate", rates.DistanceChargeRate},
	}
	if err := f.SetSheetRow(RatesSheet, "A1", &rateHeaders); err != nil {
		return err
	}
	for i := range rows {
		if err := f.SetSheetRow(RatesSheet, cell(i+2), &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeQuotes(f *excelize.File, estimator *shipping.Estimator, distances []float64) error {
	if err := f.SetSheetRow(QuotesSheet, "A1", &quoteHeaders); err != nil {
		return err
	}
	for i, d := range distances {
		q := estimator.QuoteDistance(d)
		row := []interface{}{q.DistanceMiles, q.ZoneLabel, q.BaseCost, q.ZoneCost, q.Surcharge, q.PerMileCharge, q.DistanceCharge, q.TotalCost}
		if err := f.SetSheetRow(QuotesSheet, cell(i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func cell(row int) string {
	name, _ := excelize.CoordinatesToCellName(1, row)
	return name
}
