package engine

import (
	"context"
	"countrystats/internal/table"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFixture(t *testing.T, countries, population, species string) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Countries:  writeFile(t, dir, "Country_Data.csv", countries),
		Population: writeFile(t, dir, "Population_Data.csv", population),
		Species:    writeFile(t, dir, "Threatened_Species.csv", species),
	}
}

const (
	countryCSV = `Country,Region,Sub-Region,Sq Km
Chile,Americas,South America,756102
Portugal,Europe,Southern Europe,92212
Peru,Americas,South America,1285216
Japan,Asia,Eastern Asia,377930
`
	populationCSV = `Country,2000,2010,2020
Peru,25914879,29027674,32971846
Chile,15351799,17004162,19116209
Portugal,10297081,10588401,10196707
Kenya,31964557,42030684,53771300
`
	speciesCSV = `Country,Plants,Fish,Birds
Portugal,20,25,8
Chile,44,28,33
Peru,331,29,101
Japan,67,53,46
`
)

func TestLoadDataset(t *testing.T) {
	// 1. Setup files
	paths := writeFixture(t, countryCSV, populationCSV, speciesCSV)

	// 2. Run Loader
	ds, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if err != nil {
		t.Fatal(err)
	}

	// 3. Assertions

	// Japan has no population row, Kenya has no country row.
	want := []string{"Chile", "Portugal", "Peru"}
	got := ds.Countries()
	if len(got) != len(want) {
		t.Fatalf("Expected %d countries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Country %d: Expected %s, got %s", i, want[i], got[i])
		}
	}

	chile, ok := ds.Get("Chile")
	if !ok {
		t.Fatal("Chile missing")
	}
	if chile.SubRegion != "South America" || chile.Region != "Americas" {
		t.Errorf("Chile regions wrong: %+v", chile)
	}
	if chile.Area != 756102 {
		t.Errorf("Chile area: Expected 756102, got %f", chile.Area)
	}
	if chile.Population[2] != 19116209 {
		t.Errorf("Chile 2020 population: got %f", chile.Population[2])
	}
	if chile.Species[0] != 44 || len(chile.Species) != 3 {
		t.Errorf("Chile species wrong: %v", chile.Species)
	}
	if ds.Years() != 3 {
		t.Errorf("Expected 3 years, got %d", ds.Years())
	}
	labels := ds.YearLabels()
	if len(labels) != 3 || labels[0] != "2000" || labels[2] != "2020" {
		t.Errorf("Unexpected year labels: %v", labels)
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	paths := writeFixture(t, countryCSV, populationCSV, speciesCSV)
	paths.Species = filepath.Join(filepath.Dir(paths.Species), "missing.csv")

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Expected not-exist error, got %v", err)
	}
}

func TestLoadDatasetBadNumber(t *testing.T) {
	population := "Country,2000,2010\nChile,15351799,-17\n"
	paths := writeFixture(t, countryCSV, population, speciesCSV)

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if pe.Line != 2 || pe.Column != 2 || pe.Value != "-17" {
		t.Errorf("ParseError position wrong: %+v", pe)
	}
}

func TestLoadDatasetWithoutHeaderSkip(t *testing.T) {
	// The header row joins on "Country" and its year labels are numeric,
	// but "Sq Km" is not, so the load must fail rather than invent a record.
	paths := writeFixture(t, countryCSV, populationCSV, speciesCSV)

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), false)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
}

func TestMergeTextColumnsStayText(t *testing.T) {
	// A numeric-looking sub-region must not be converted.
	countries := "Country,Region,Sub,Area\nAtlantis,Ocean,2020,10\n"
	population := "Country,a\nAtlantis,5\n"
	species := "Country,a\nAtlantis,1\n"
	paths := writeFixture(t, countries, population, species)

	ds, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := ds.Get("Atlantis")
	if rec.SubRegion != "2020" {
		t.Errorf("Expected sub-region 2020, got %q", rec.SubRegion)
	}
}

func TestMergeSeriesMismatch(t *testing.T) {
	population := "Country,2000,2010\nChile,1,2\nPortugal,3\n"
	species := "Country,a,b\nChile,1,2\nPortugal,3,4\n"
	paths := writeFixture(t, countryCSV, population, species)

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if !errors.Is(err, ErrSeriesMismatch) {
		t.Fatalf("Expected ErrSeriesMismatch, got %v", err)
	}

	// Portugal's short population row is at line 3.
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if pe.File != paths.Population || pe.Line != 3 || !strings.Contains(pe.Value, "Portugal") {
		t.Errorf("Mismatch position wrong: %+v", pe)
	}
}

func TestMergeSpeciesShorterThanPopulation(t *testing.T) {
	population := "Country,2000,2010\nChile,1,2\n"
	species := "Country,a\nChile,1\n"
	paths := writeFixture(t, countryCSV, population, species)

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrSeriesMismatch) {
		t.Fatalf("Expected series mismatch ParseError, got %v", err)
	}
	if pe.File != paths.Species || pe.Line != 2 {
		t.Errorf("Mismatch position wrong: %+v", pe)
	}
}

func TestLoadDatasetBareQuotes(t *testing.T) {
	countries := "Country,Region,Sub,Area\nCongo \"Brazzaville\",Africa,Middle Africa,342000\n"
	population := "Country,2000\nCongo \"Brazzaville\",3134030\n"
	species := "Country,a\nCongo \"Brazzaville\",98\n"
	paths := writeFixture(t, countries, population, species)

	ds, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ds.Get(`Congo "Brazzaville"`); !ok {
		t.Errorf("Expected quoted name to survive, got %v", ds.Countries())
	}
}

func TestLoadDatasetSpeciesOverflow(t *testing.T) {
	species := "Country,a\nChile,99999999999999999999\n"
	paths := writeFixture(t, countryCSV, "Country,2000\nChile,1\n", species)

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if !errors.Is(err, table.ErrOverflow) || pe.Line != 2 || pe.Column != 1 {
		t.Errorf("Overflow error wrong: %+v", pe)
	}
}

func TestMergeZeroArea(t *testing.T) {
	countries := "Country,Region,Sub,Area\nAtlantis,Ocean,Deep,0\n"
	paths := writeFixture(t, countries, "Country,a\nAtlantis,5\n", "Country,a\nAtlantis,1\n")

	_, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if !errors.Is(err, ErrNonPositiveArea) {
		t.Fatalf("Expected ErrNonPositiveArea, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	paths := writeFixture(t, countryCSV, populationCSV, speciesCSV)
	a, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Same content should give the same fingerprint")
	}

	rec, _ := b.Get("Peru")
	rec.Species[0]++
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("Changed content should change the fingerprint")
	}
}

func TestLoadSampleData(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata")
	paths := Paths{
		Countries:  filepath.Join(dir, "Country_Data.csv"),
		Population: filepath.Join(dir, "Population_Data.csv"),
		Species:    filepath.Join(dir, "Threatened_Species.csv"),
	}

	ds, err := LoadDataset(context.Background(), paths, DefaultSchema(), true)
	if err != nil {
		t.Fatal(err)
	}

	// Peru lacks population data, Papua New Guinea lacks species data.
	if ds.Len() != 6 {
		t.Fatalf("Expected 6 countries, got %v", ds.Countries())
	}
	if _, ok := ds.Get("Peru"); ok {
		t.Error("Peru should not survive the join")
	}
	if got := CountriesIn(ds, "Melanesia"); len(got) != 1 || got[0] != "Fiji" {
		t.Errorf("Unexpected Melanesia countries: %v", got)
	}
}
