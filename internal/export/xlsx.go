package export

import (
	"countrystats/internal/engine"
	"countrystats/internal/models"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	populationSheet = "Population"
	seriesSheet     = "Series"
	speciesSheet    = "Species"
)

// Workbook writes the summary for one country and its sub-region to an
// XLSX file with Population, Series and Species sheets.
func Workbook(path string, ds *engine.Dataset, summary *models.Summary) error {
	rec, ok := ds.Get(summary.Population.Country)
	if !ok {
		return fmt.Errorf("%q: %w", summary.Population.Country, engine.ErrCountryNotFound)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", populationSheet); err != nil {
		return err
	}
	for _, name := range []string{seriesSheet, speciesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	pop := summary.Population
	rows := [][]interface{}{
		{"Country", "Sub-Region", "Change", "Avg Population", "Density"},
		{pop.Country, summary.SubRegion, pop.Change, pop.Average, pop.Density},
	}
	if err := setRows(f, populationSheet, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Year", "Population", "Threatened Species"}}
	for i := range rec.Population {
		rows = append(rows, []interface{}{i + 1, rec.Population[i], rec.Species[i]})
	}
	if err := setRows(f, seriesSheet, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Country", "Avg Species", "Total Species", "Species/Sq Km"}}
	for _, s := range summary.Species {
		rows = append(rows, []interface{}{s.Country, s.AvgSpecies, s.TotalSpecies, s.SpeciesPerSqKm})
	}
	if err := setRows(f, speciesSheet, rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
