package engine

import (
	"countrystats/internal/models"
	"encoding/binary"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zeebo/xxh3"
)

// Dataset holds the joined records keyed by country, in the order the
// countries appear in the country file.
type Dataset struct {
	records *orderedmap.OrderedMap[string, *models.CountryRecord]
	years   int
	labels  []string
}

func NewDataset() *Dataset {
	return &Dataset{records: orderedmap.New[string, *models.CountryRecord]()}
}

// Add inserts rec, replacing any record with the same country while keeping
// its original position.
func (d *Dataset) Add(rec *models.CountryRecord) error {
	if len(rec.Population) == 0 || len(rec.Species) == 0 {
		return ErrEmptySeries
	}
	if d.records.Len() == 0 {
		d.years = len(rec.Population)
	}
	if len(rec.Population) != d.years || len(rec.Species) != d.years {
		return ErrSeriesMismatch
	}
	d.records.Set(rec.Country, rec)
	return nil
}

func (d *Dataset) Get(country string) (*models.CountryRecord, bool) {
	return d.records.Get(country)
}

func (d *Dataset) Len() int {
	return d.records.Len()
}

// Years is the length of every population and species series.
func (d *Dataset) Years() int {
	return d.years
}

// YearLabels returns the series column names taken from the population
// header, or nil when the files were read without a header.
func (d *Dataset) YearLabels() []string {
	return d.labels
}

func (d *Dataset) SetYearLabels(labels []string) {
	d.labels = labels
}

// Each calls fn for every record in insertion order.
func (d *Dataset) Each(fn func(rec *models.CountryRecord)) {
	for pair := d.records.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Value)
	}
}

// Records returns the records in insertion order.
func (d *Dataset) Records() []*models.CountryRecord {
	out := make([]*models.CountryRecord, 0, d.records.Len())
	d.Each(func(rec *models.CountryRecord) { out = append(out, rec) })
	return out
}

func (d *Dataset) Countries() []string {
	out := make([]string, 0, d.records.Len())
	d.Each(func(rec *models.CountryRecord) { out = append(out, rec.Country) })
	return out
}

// Fingerprint hashes every field of every record. Two datasets with the same
// content in the same order have the same fingerprint.
func (d *Dataset) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	d.Each(func(rec *models.CountryRecord) {
		h.WriteString(rec.Country)
		h.Write([]byte{0})
		h.WriteString(rec.Region)
		h.Write([]byte{0})
		h.WriteString(rec.SubRegion)
		h.Write([]byte{0})
		writeFloat(rec.Area)
		for _, p := range rec.Population {
			writeFloat(p)
		}
		for _, s := range rec.Species {
			writeFloat(float64(s))
		}
	})
	return h.Sum64()
}
