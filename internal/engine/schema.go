package engine

// Schema fixes the role of each column by position. The key column is the
// same in all three files.
type Schema struct {
	Key int `yaml:"key"`

	// Country file
	Region    int `yaml:"region"`
	SubRegion int `yaml:"sub_region"`
	Area      int `yaml:"area"`

	// First series column of the population and species files. Every
	// column from here to the end of the row belongs to the series.
	PopulationFrom int `yaml:"population_from"`
	SpeciesFrom    int `yaml:"species_from"`
}

func DefaultSchema() Schema {
	return Schema{
		Key:            0,
		Region:         1,
		SubRegion:      2,
		Area:           3,
		PopulationFrom: 1,
		SpeciesFrom:    1,
	}
}

// Paths locates the three input files.
type Paths struct {
	Countries  string `yaml:"countries"`
	Population string `yaml:"population"`
	Species    string `yaml:"species"`
}
