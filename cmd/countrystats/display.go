package main

import (
	"countrystats/internal/models"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// yearSpan names the first and last sampled year for the summary text.
func yearSpan(labels []string) (string, string) {
	if len(labels) == 0 {
		return "the first year", "the last year"
	}
	return labels[0], labels[len(labels)-1]
}

func displayText(w io.Writer, summary *models.Summary, labels []string) {
	p := message.NewPrinter(language.English)
	from, to := yearSpan(labels)
	pop := summary.Population

	// Whole people with digit grouping, not the raw float.
	p.Fprintf(w, "\nThe change in population from %s to %s is: %.0f people\n", from, to, pop.Change)
	p.Fprintf(w, "The average population from %s to %s is: %.0f people\n", from, to, pop.Average)
	p.Fprintf(w, "The current population density is: %.2f people per sq km\n", pop.Density)

	fmt.Fprintln(w, "\nThe average number of threatened species in each country of the sub-region:")
	fmt.Fprintf(w, "%-15s%-15s%-15s%-15s\n", "Country", "Avg Species", "Total Species", "Species/Sq Km")
	for _, s := range summary.Species {
		fmt.Fprintf(w, "%-15s%-15.1f%-15d%-15.6f\n", s.Country, s.AvgSpecies, s.TotalSpecies, s.SpeciesPerSqKm)
	}
}

func displayJSON(w io.Writer, summary *models.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
