package engine

import (
	"countrystats/internal/models"
	"fmt"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

func sum[T number](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

func mean[T number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(sum(xs)) / float64(len(xs))
}

// PopulationStats computes the change between the first and last sampled
// year, the mean over all years and the latest density per sq km.
func PopulationStats(ds *Dataset, country string) (models.PopulationStats, error) {
	rec, ok := ds.Get(country)
	if !ok {
		return models.PopulationStats{}, fmt.Errorf("%q: %w", country, ErrCountryNotFound)
	}
	pop := rec.Population
	last := pop[len(pop)-1]

	return models.PopulationStats{
		Country: country,
		Change:  last - pop[0],
		Average: mean(pop),
		Density: last / rec.Area,
	}, nil
}

// SpeciesStats returns one entry per country whose sub-region equals
// subRegion exactly. The result is never nil.
func SpeciesStats(ds *Dataset, subRegion string) []models.SpeciesStat {
	out := make([]models.SpeciesStat, 0)
	ds.Each(func(rec *models.CountryRecord) {
		if rec.SubRegion != subRegion {
			return
		}
		total := sum(rec.Species)
		out = append(out, models.SpeciesStat{
			Country:        rec.Country,
			AvgSpecies:     mean(rec.Species),
			TotalSpecies:   total,
			SpeciesPerSqKm: float64(total) / rec.Area,
		})
	})
	return out
}

// CountriesIn lists the countries of subRegion in dataset order.
func CountriesIn(ds *Dataset, subRegion string) []string {
	out := make([]string, 0)
	ds.Each(func(rec *models.CountryRecord) {
		if rec.SubRegion == subRegion {
			out = append(out, rec.Country)
		}
	})
	return out
}

// SubRegions lists the distinct sub-regions in first-seen order.
func SubRegions(ds *Dataset) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	ds.Each(func(rec *models.CountryRecord) {
		if !seen[rec.SubRegion] {
			seen[rec.SubRegion] = true
			out = append(out, rec.SubRegion)
		}
	})
	return out
}

// Summarize runs both aggregations for a sub-region and one of its
// countries.
func Summarize(ds *Dataset, subRegion, country string) (*models.Summary, error) {
	pop, err := PopulationStats(ds, country)
	if err != nil {
		return nil, err
	}
	return &models.Summary{
		SubRegion:  subRegion,
		Population: pop,
		Species:    SpeciesStats(ds, subRegion),
	}, nil
}
