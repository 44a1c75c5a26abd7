package main

import (
	"bufio"
	"context"
	"countrystats/internal/config"
	"countrystats/internal/engine"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

type options struct {
	subRegion string
	country   string
	format    string

	exportCSV     string
	exportArrow   string
	exportDataset string
	exportXLSX    string
	chartDir      string
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	envFile := flag.String("env", ".env", "Path to .env file (ignored if missing)")
	countryFile := flag.String("country-file", "", "Country metadata CSV (overrides config)")
	populationFile := flag.String("population-file", "", "Population series CSV (overrides config)")
	speciesFile := flag.String("species-file", "", "Threatened species CSV (overrides config)")

	var opts options
	flag.StringVar(&opts.subRegion, "sub-region", "", "Sub-region to report on (prompted if empty)")
	flag.StringVar(&opts.country, "country", "", "Country within the sub-region (prompted if empty)")
	flag.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flag.StringVar(&opts.exportCSV, "export-csv", "", "Write species statistics to this CSV file")
	flag.StringVar(&opts.exportArrow, "export-arrow", "", "Write species statistics to this Arrow IPC file")
	flag.StringVar(&opts.exportDataset, "export-dataset", "", "Write the merged dataset to this Arrow IPC file")
	flag.StringVar(&opts.exportXLSX, "export-xlsx", "", "Write the summary to this XLSX workbook")
	flag.StringVar(&opts.chartDir, "chart-dir", "", "Write population and species charts (PNG) to this directory")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *countryFile != "" {
		cfg.Files.Countries = *countryFile
	}
	if *populationFile != "" {
		cfg.Files.Population = *populationFile
	}
	if *speciesFile != "" {
		cfg.Files.Species = *speciesFile
	}
	// Keep the terminal for prompts unless asked otherwise.
	if cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	cfg.ApplyLogging()

	ctx := context.Background()
	ds, err := engine.LoadDataset(ctx, cfg.Files, cfg.Schema, cfg.SkipHeader)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := run(ds, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run asks for a sub-region and a country, then prints and exports the
// summary. An unknown sub-region or a country outside it ends the run
// normally after a message.
func run(ds *engine.Dataset, opts options, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	sub := opts.subRegion
	if sub == "" {
		var err error
		if sub, err = prompt(reader, out, "Please enter a sub-region: "); err != nil {
			return err
		}
	}

	countries := engine.CountriesIn(ds, sub)
	if len(countries) == 0 {
		fmt.Fprintln(out, "No countries found for the specified sub-region.")
		return nil
	}
	fmt.Fprintf(out, "Countries in %s: %s\n", sub, strings.Join(countries, ", "))

	country := opts.country
	if country == "" {
		var err error
		if country, err = prompt(reader, out, "Please enter a country within the specified sub-region: "); err != nil {
			return err
		}
	}
	if !slices.Contains(countries, country) {
		fmt.Fprintln(out, "Invalid country selection.")
		return nil
	}

	summary, err := engine.Summarize(ds, sub, country)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		if err := displayJSON(out, summary); err != nil {
			return err
		}
	default:
		displayText(out, summary, ds.YearLabels())
	}

	return exportAll(ds, opts, summary)
}

func prompt(r *bufio.Reader, w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
