package models

// CountryRecord is one country after the three source files are joined.
// Population and Species are index-aligned to the same year columns.
type CountryRecord struct {
	Country    string    `json:"country"`
	Region     string    `json:"region"`
	SubRegion  string    `json:"sub_region"`
	Area       float64   `json:"area"`
	Population []float64 `json:"population"`
	Species    []int     `json:"species"`
}

type PopulationStats struct {
	Country string  `json:"country"`
	Change  float64 `json:"change"`
	Average float64 `json:"avg_population"`
	Density float64 `json:"density"`
}

type SpeciesStat struct {
	Country        string  `json:"country"`
	AvgSpecies     float64 `json:"avg_species"`
	TotalSpecies   int     `json:"total_species"`
	SpeciesPerSqKm float64 `json:"species_per_sq_km"`
}

// Summary is what the CLI prints and the API returns for a sub-region/country pair.
type Summary struct {
	SubRegion  string          `json:"sub_region"`
	Population PopulationStats `json:"population"`
	Species    []SpeciesStat   `json:"species"`
}
