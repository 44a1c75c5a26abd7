// Package export writes merged and derived data to files: the source CSV
// layout, Arrow, XLSX and PNG charts.
package export

import (
	"countrystats/internal/engine"
	"countrystats/internal/models"
	"countrystats/internal/table"
	"strconv"
)

// SpeciesRows lays stats out as a header plus one row per country.
func SpeciesRows(stats []models.SpeciesStat) []table.Row {
	rows := []table.Row{{
		table.Text("Country"), table.Text("Avg Species"), table.Text("Total Species"), table.Text("Species/Sq Km"),
	}}
	for _, s := range stats {
		rows = append(rows, table.Row{
			table.Text(s.Country), table.Number(s.AvgSpecies), table.Int(s.TotalSpecies), table.Number(s.SpeciesPerSqKm),
		})
	}
	return rows
}

// DatasetRows splits ds back into the three source layouts, each with a
// header. Year columns are labelled by index.
func DatasetRows(ds *engine.Dataset) (countries, population, species []table.Row) {
	countries = []table.Row{{table.Text("Country"), table.Text("Region"), table.Text("Sub-Region"), table.Text("Sq Km")}}

	yearHeader := table.Row{table.Text("Country")}
	for i := 0; i < ds.Years(); i++ {
		yearHeader = append(yearHeader, table.Text("year_"+strconv.Itoa(i+1)))
	}
	population = []table.Row{yearHeader}
	species = []table.Row{yearHeader}

	ds.Each(func(rec *models.CountryRecord) {
		countries = append(countries, table.Row{
			table.Text(rec.Country), table.Text(rec.Region), table.Text(rec.SubRegion), table.Number(rec.Area),
		})

		p := table.Row{table.Text(rec.Country)}
		for _, v := range rec.Population {
			p = append(p, table.Number(v))
		}
		population = append(population, p)

		s := table.Row{table.Text(rec.Country)}
		for _, v := range rec.Species {
			s = append(s, table.Int(v))
		}
		species = append(species, s)
	})
	return countries, population, species
}

// WriteDataset writes ds in the source layout to the three paths.
func WriteDataset(paths engine.Paths, ds *engine.Dataset) error {
	countries, population, species := DatasetRows(ds)
	if err := table.Write(paths.Countries, countries, true); err != nil {
		return err
	}
	if err := table.Write(paths.Population, population, true); err != nil {
		return err
	}
	return table.Write(paths.Species, species, true)
}
