// Package config loads settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"countrystats/internal/engine"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COUNTRYSTATS_"

type Config struct {
	Files          engine.Paths  `yaml:"files"`
	SkipHeader     bool          `yaml:"skip_header"`
	Schema         engine.Schema `yaml:"schema"`
	ListenAddr     string        `yaml:"listen_addr"`
	ReloadSchedule string        `yaml:"reload_schedule"`
	LogLevel       string        `yaml:"log_level"`
	SnapshotDB     string        `yaml:"snapshot_db"`
}

func Default() *Config {
	return &Config{
		Files: engine.Paths{
			Countries:  "Country_Data.csv",
			Population: "Population_Data.csv",
			Species:    "Threatened_Species.csv",
		},
		SkipHeader: true,
		Schema:     engine.DefaultSchema(),
		ListenAddr: ":8080",
		LogLevel:   "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), envFile (skipped when missing) and COUNTRYSTATS_*
// variables.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"COUNTRY_FILE":    &c.Files.Countries,
		"POPULATION_FILE": &c.Files.Population,
		"SPECIES_FILE":    &c.Files.Species,
		"LISTEN_ADDR":     &c.ListenAddr,
		"RELOAD_SCHEDULE": &c.ReloadSchedule,
		"LOG_LEVEL":       &c.LogLevel,
		"SNAPSHOT_DB":     &c.SnapshotDB,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "SKIP_HEADER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSKIP_HEADER: %w", envPrefix, err)
		}
		c.SkipHeader = b
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Files.Countries == "" || c.Files.Population == "" || c.Files.Species == "" {
		return errors.New("config: all three input files are required")
	}
	s := c.Schema
	for _, col := range []int{s.Key, s.Region, s.SubRegion, s.Area, s.PopulationFrom, s.SpeciesFrom} {
		if col < 0 {
			return errors.New("config: schema columns must not be negative")
		}
	}
	if s.PopulationFrom == s.Key || s.SpeciesFrom == s.Key {
		return errors.New("config: series cannot start at the key column")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a gommon log level.
func ParseLevel(name string) (log.Lvl, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", name)
}

// ApplyLogging sets the package logger level.
func (c *Config) ApplyLogging() {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		lvl = log.INFO
	}
	log.SetLevel(lvl)
}
