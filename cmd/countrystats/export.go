package main

import (
	"countrystats/internal/engine"
	"countrystats/internal/export"
	"countrystats/internal/models"
	"countrystats/internal/table"
	"fmt"
	"os"
	"path/filepath"

	"github.com/labstack/gommon/log"
)

func exportAll(ds *engine.Dataset, opts options, summary *models.Summary) error {
	if opts.exportCSV != "" {
		if err := table.Write(opts.exportCSV, export.SpeciesRows(summary.Species), true); err != nil {
			return err
		}
		log.Infof("Wrote %s", opts.exportCSV)
	}
	if opts.exportArrow != "" {
		if err := export.SpeciesIPC(opts.exportArrow, summary.Species); err != nil {
			return err
		}
		log.Infof("Wrote %s", opts.exportArrow)
	}
	if opts.exportDataset != "" {
		if err := export.DatasetIPC(opts.exportDataset, ds); err != nil {
			return err
		}
		log.Infof("Wrote %s", opts.exportDataset)
	}
	if opts.exportXLSX != "" {
		if err := export.Workbook(opts.exportXLSX, ds, summary); err != nil {
			return err
		}
		log.Infof("Wrote %s", opts.exportXLSX)
	}
	if opts.chartDir != "" {
		if err := os.MkdirAll(opts.chartDir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
		popPath := filepath.Join(opts.chartDir, "population.png")
		if err := export.PopulationChart(popPath, ds, summary.Population.Country); err != nil {
			return err
		}
		specPath := filepath.Join(opts.chartDir, "species.png")
		if err := export.SpeciesChart(specPath, summary.SubRegion, summary.Species); err != nil {
			return err
		}
		log.Infof("Wrote charts to %s", opts.chartDir)
	}
	return nil
}
