package export

import (
	"countrystats/internal/engine"
	"countrystats/internal/models"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

var SpeciesSchema = arrow.NewSchema([]arrow.Field{
	{Name: "country", Type: arrow.BinaryTypes.String},
	{Name: "avg_species", Type: arrow.PrimitiveTypes.Float64},
	{Name: "total_species", Type: arrow.PrimitiveTypes.Int64},
	{Name: "species_per_sq_km", Type: arrow.PrimitiveTypes.Float64},
}, nil)

var DatasetSchema = arrow.NewSchema([]arrow.Field{
	{Name: "country", Type: arrow.BinaryTypes.String},
	{Name: "region", Type: arrow.BinaryTypes.String},
	{Name: "sub_region", Type: arrow.BinaryTypes.String},
	{Name: "area", Type: arrow.PrimitiveTypes.Float64},
	{Name: "population", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64)},
	{Name: "species", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
}, nil)

func speciesRecord(mem memory.Allocator, stats []models.SpeciesStat) arrow.Record {
	b := array.NewRecordBuilder(mem, SpeciesSchema)
	defer b.Release()

	country := b.Field(0).(*array.StringBuilder)
	avg := b.Field(1).(*array.Float64Builder)
	total := b.Field(2).(*array.Int64Builder)
	density := b.Field(3).(*array.Float64Builder)
	for _, s := range stats {
		country.Append(s.Country)
		avg.Append(s.AvgSpecies)
		total.Append(int64(s.TotalSpecies))
		density.Append(s.SpeciesPerSqKm)
	}
	return b.NewRecord()
}

func datasetRecord(mem memory.Allocator, ds *engine.Dataset) arrow.Record {
	b := array.NewRecordBuilder(mem, DatasetSchema)
	defer b.Release()

	country := b.Field(0).(*array.StringBuilder)
	region := b.Field(1).(*array.StringBuilder)
	subRegion := b.Field(2).(*array.StringBuilder)
	area := b.Field(3).(*array.Float64Builder)
	pop := b.Field(4).(*array.ListBuilder)
	popValues := pop.ValueBuilder().(*array.Float64Builder)
	spec := b.Field(5).(*array.ListBuilder)
	specValues := spec.ValueBuilder().(*array.Int64Builder)

	ds.Each(func(rec *models.CountryRecord) {
		country.Append(rec.Country)
		region.Append(rec.Region)
		subRegion.Append(rec.SubRegion)
		area.Append(rec.Area)
		pop.Append(true)
		popValues.AppendValues(rec.Population, nil)
		spec.Append(true)
		for _, n := range rec.Species {
			specValues.Append(int64(n))
		}
	})
	return b.NewRecord()
}

func writeIPC(path string, schema *arrow.Schema, rec arrow.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	if err != nil {
		f.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SpeciesIPC writes stats as an Arrow IPC file.
func SpeciesIPC(path string, stats []models.SpeciesStat) error {
	rec := speciesRecord(memory.NewGoAllocator(), stats)
	defer rec.Release()
	return writeIPC(path, SpeciesSchema, rec)
}

// DatasetIPC writes the merged dataset as an Arrow IPC file with the
// series stored as list columns.
func DatasetIPC(path string, ds *engine.Dataset) error {
	rec := datasetRecord(memory.NewGoAllocator(), ds)
	defer rec.Release()
	return writeIPC(path, DatasetSchema, rec)
}

// SpeciesCSV writes stats through the Arrow CSV writer, header included.
func SpeciesCSV(w io.Writer, stats []models.SpeciesStat) error {
	rec := speciesRecord(memory.NewGoAllocator(), stats)
	defer rec.Release()

	cw := csv.NewWriter(w, SpeciesSchema, csv.WithHeader(true))
	if err := cw.Write(rec); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReadSpeciesCSV reads what SpeciesCSV wrote.
func ReadSpeciesCSV(r io.Reader) ([]models.SpeciesStat, error) {
	cr := csv.NewReader(r, SpeciesSchema, csv.WithHeader(true))
	defer cr.Release()

	out := make([]models.SpeciesStat, 0)
	for cr.Next() {
		out = append(out, speciesFromRecord(cr.Record())...)
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func speciesFromRecord(rec arrow.Record) []models.SpeciesStat {
	country := rec.Column(0).(*array.String)
	avg := rec.Column(1).(*array.Float64)
	total := rec.Column(2).(*array.Int64)
	density := rec.Column(3).(*array.Float64)

	out := make([]models.SpeciesStat, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		out = append(out, models.SpeciesStat{
			Country:        country.Value(i),
			AvgSpecies:     avg.Value(i),
			TotalSpecies:   int(total.Value(i)),
			SpeciesPerSqKm: density.Value(i),
		})
	}
	return out
}

// ReadSpeciesIPC reads what SpeciesIPC wrote.
func ReadSpeciesIPC(path string) ([]models.SpeciesStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer r.Close()

	out := make([]models.SpeciesStat, 0)
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, err
		}
		out = append(out, speciesFromRecord(rec)...)
	}
	return out, nil
}

// ReadDatasetIPC reads what DatasetIPC wrote.
func ReadDatasetIPC(path string) (*engine.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer r.Close()

	ds := engine.NewDataset()
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, err
		}
		country := rec.Column(0).(*array.String)
		region := rec.Column(1).(*array.String)
		subRegion := rec.Column(2).(*array.String)
		area := rec.Column(3).(*array.Float64)
		pop := rec.Column(4).(*array.List)
		popValues := pop.ListValues().(*array.Float64)
		spec := rec.Column(5).(*array.List)
		specValues := spec.ListValues().(*array.Int64)

		for row := 0; row < int(rec.NumRows()); row++ {
			cr := &models.CountryRecord{
				Country:   country.Value(row),
				Region:    region.Value(row),
				SubRegion: subRegion.Value(row),
				Area:      area.Value(row),
			}
			start, end := pop.ValueOffsets(row)
			for j := start; j < end; j++ {
				cr.Population = append(cr.Population, popValues.Value(int(j)))
			}
			start, end = spec.ValueOffsets(row)
			for j := start; j < end; j++ {
				cr.Species = append(cr.Species, int(specValues.Value(int(j))))
			}
			if err := ds.Add(cr); err != nil {
				return nil, fmt.Errorf("%s: %w", cr.Country, err)
			}
		}
	}
	return ds, nil
}
