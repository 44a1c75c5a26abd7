package export

import (
	"countrystats/internal/engine"
	"countrystats/internal/models"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PopulationChart plots the population series of one country.
func PopulationChart(path string, ds *engine.Dataset, country string) error {
	rec, ok := ds.Get(country)
	if !ok {
		return fmt.Errorf("%q: %w", country, engine.ErrCountryNotFound)
	}

	p := plot.New()
	p.Title.Text = "Population of " + country
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "People"

	pts := make(plotter.XYs, len(rec.Population))
	for i, v := range rec.Population {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points, plotter.NewGrid())

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// SpeciesChart draws total threatened species per country as bars.
func SpeciesChart(path, subRegion string, stats []models.SpeciesStat) error {
	if len(stats) == 0 {
		return fmt.Errorf("no countries in sub-region %q", subRegion)
	}

	p := plot.New()
	p.Title.Text = "Threatened species in " + subRegion
	p.Y.Label.Text = "Total species"

	values := make(plotter.Values, len(stats))
	names := make([]string, len(stats))
	for i, s := range stats {
		values[i] = float64(s.TotalSpecies)
		names[i] = s.Country
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names...)

	return p.Save(vg.Length(len(stats)+2)*vg.Inch, 4*vg.Inch, path)
}
