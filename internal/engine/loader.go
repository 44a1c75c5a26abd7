package engine

import (
	"context"
	"countrystats/internal/models"
	"countrystats/internal/table"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
)

// --- 1. FIELD CONVERSION ---

func cell(t *table.Table, i, col int) (string, error) {
	row := t.Rows[i]
	if col >= len(row) {
		return "", &ParseError{File: t.Name, Line: t.Lines[i], Column: col, Err: ErrMissingColumn}
	}
	return row[col].Text, nil
}

func decimalCell(t *table.Table, i, col int) (float64, error) {
	s, err := cell(t, i, col)
	if err != nil {
		return 0, err
	}
	v, err := table.ParseDecimal(s)
	if err != nil {
		return 0, &ParseError{File: t.Name, Line: t.Lines[i], Column: col, Value: s, Err: err}
	}
	return v, nil
}

func floatSeries(t *table.Table, i, from int) ([]float64, error) {
	row := t.Rows[i]
	if from >= len(row) {
		return nil, nil
	}
	out := make([]float64, 0, len(row)-from)
	for col := from; col < len(row); col++ {
		v, err := decimalCell(t, i, col)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func wholeSeries(t *table.Table, i, from int) ([]int, error) {
	row := t.Rows[i]
	if from >= len(row) {
		return nil, nil
	}
	out := make([]int, 0, len(row)-from)
	for col := from; col < len(row); col++ {
		s := row[col].Text
		v, err := table.ParseWhole(s)
		if err != nil {
			return nil, &ParseError{File: t.Name, Line: t.Lines[i], Column: col, Value: s, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// index maps key -> row index. A repeated key keeps its first position and
// takes the row of its last occurrence.
func index(t *table.Table, key int) (*orderedmap.OrderedMap[string, int], error) {
	idx := orderedmap.New[string, int]()
	for i := range t.Rows {
		k, err := cell(t, i, key)
		if err != nil {
			return nil, err
		}
		idx.Set(k, i)
	}
	return idx, nil
}

// --- 2. MERGE ---

// Merge inner-joins the three tables on the key column. Only countries
// present in all three survive, in the order of the country table.
func Merge(countries, population, species *table.Table, schema Schema) (*Dataset, error) {
	cIdx, err := index(countries, schema.Key)
	if err != nil {
		return nil, err
	}
	pIdx, err := index(population, schema.Key)
	if err != nil {
		return nil, err
	}
	sIdx, err := index(species, schema.Key)
	if err != nil {
		return nil, err
	}

	ds := NewDataset()
	if len(population.Header) > schema.PopulationFrom {
		ds.SetYearLabels(population.Header[schema.PopulationFrom:].Strings())
	}
	for pair := cIdx.Oldest(); pair != nil; pair = pair.Next() {
		country, ci := pair.Key, pair.Value
		pi, ok := pIdx.Get(country)
		if !ok {
			continue
		}
		si, ok := sIdx.Get(country)
		if !ok {
			continue
		}

		rec, err := buildRecord(country, countries, ci, population, pi, species, si, schema)
		if err != nil {
			return nil, err
		}
		if err := ds.Add(rec); err != nil {
			if errors.Is(err, ErrSeriesMismatch) {
				return nil, mismatch(ds, rec, population, pi, species, si, schema)
			}
			return nil, fmt.Errorf("%s: %w", country, err)
		}
	}
	return ds, nil
}

// mismatch points a series length error at the file whose row is off.
func mismatch(ds *Dataset, rec *models.CountryRecord, population *table.Table, pi int, species *table.Table, si int, schema Schema) error {
	want := len(rec.Population)
	if ds.Len() > 0 {
		want = ds.Years()
	}
	t, i, col, got := species, si, schema.SpeciesFrom, len(rec.Species)
	if len(rec.Population) != want {
		t, i, col, got = population, pi, schema.PopulationFrom, len(rec.Population)
	}
	return &ParseError{
		File: t.Name, Line: t.Lines[i], Column: col,
		Value: fmt.Sprintf("%s: %d values, want %d", rec.Country, got, want),
		Err:   ErrSeriesMismatch,
	}
}

func buildRecord(country string, countries *table.Table, ci int, population *table.Table, pi int, species *table.Table, si int, schema Schema) (*models.CountryRecord, error) {
	region, err := cell(countries, ci, schema.Region)
	if err != nil {
		return nil, err
	}
	subRegion, err := cell(countries, ci, schema.SubRegion)
	if err != nil {
		return nil, err
	}
	area, err := decimalCell(countries, ci, schema.Area)
	if err != nil {
		return nil, err
	}
	if area <= 0 {
		return nil, &ParseError{
			File: countries.Name, Line: countries.Lines[ci], Column: schema.Area,
			Value: countries.Rows[ci][schema.Area].Text, Err: ErrNonPositiveArea,
		}
	}

	pop, err := floatSeries(population, pi, schema.PopulationFrom)
	if err != nil {
		return nil, err
	}
	spec, err := wholeSeries(species, si, schema.SpeciesFrom)
	if err != nil {
		return nil, err
	}

	return &models.CountryRecord{
		Country:    country,
		Region:     region,
		SubRegion:  subRegion,
		Area:       area,
		Population: pop,
		Species:    spec,
	}, nil
}

// --- 3. MAIN LOADER ---

// LoadDataset reads the three files concurrently and merges them.
func LoadDataset(ctx context.Context, paths Paths, schema Schema, skipHeader bool) (*Dataset, error) {
	start := time.Now()
	log.Infof("Loading dataset from %s, %s, %s", paths.Countries, paths.Population, paths.Species)

	var countries, population, species *table.Table
	g, ctx := errgroup.WithContext(ctx)
	read := func(path string, dst **table.Table) func() error {
		return func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := table.Read(path, skipHeader)
			if err != nil {
				return err
			}
			*dst = t
			return nil
		}
	}
	g.Go(read(paths.Countries, &countries))
	g.Go(read(paths.Population, &population))
	g.Go(read(paths.Species, &species))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds, err := Merge(countries, population, species, schema)
	if err != nil {
		return nil, err
	}

	log.Infof("Load complete. Countries: %d (of %d in country file). Years: %d. Time: %v",
		ds.Len(), len(countries.Rows), ds.Years(), time.Since(start))
	return ds, nil
}
