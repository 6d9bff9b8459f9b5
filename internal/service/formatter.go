package service

import (
	"strconv"
	"strings"

	"rental-terms-qa/internal/models"
)

// NoRelevantTermsContext is the context handed to the model when nothing was retrieved.
const NoRelevantTermsContext = "No relevant rental terms found."

type entryKey struct {
	country     string
	vehicleType string
}

type entry struct {
	key      entryKey
	sections []models.Section
	content  map[models.Section]string
}

// FormatContext renders ranked results as prompt context. The highest scoring result is shown
// as the most relevant section, then every result is regrouped by country and vehicle type.
// The output depends only on the input, so equal results always produce the same prompt.
func FormatContext(results []models.ScoredResult) string {
	if len(results) == 0 {
		return NoRelevantTermsContext
	}

	var parts []string

	best := mostRelevant(results)
	if strings.TrimSpace(best.Content) != "" {
		parts = append(parts, "Most relevant section:\n"+best.Section.Title()+": "+best.Content+"\n")
	} else {
		parts = append(parts, "Most relevant section: Not found\n")
	}

	parts = append(parts, "Full rental terms context (for reference):\n")

	for i, e := range groupEntries(results) {
		parts = append(parts,
			"Rental Terms Entry "+strconv.Itoa(i+1)+":",
			"Country: "+e.key.country,
			"Vehicle Type: "+e.key.vehicleType,
		)
		for _, section := range e.sections {
			if content := e.content[section]; strings.TrimSpace(content) != "" {
				parts = append(parts, section.Title()+": "+content)
			}
		}
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// groupEntries merges results sharing a country and vehicle type, in order of first appearance.
// A section seen twice keeps its first position and takes the later content.
func groupEntries(results []models.ScoredResult) []*entry {
	var entries []*entry
	index := make(map[entryKey]*entry)

	for _, r := range results {
		key := entryKey{country: r.Country, vehicleType: r.VehicleType}
		e, ok := index[key]
		if !ok {
			e = &entry{key: key, content: make(map[models.Section]string)}
			index[key] = e
			entries = append(entries, e)
		}

		if _, seen := e.content[r.Section]; !seen {
			e.sections = append(e.sections, r.Section)
		}
		e.content[r.Section] = r.Content
	}

	return entries
}

// mostRelevant returns the highest scoring result, the earliest one on ties.
func mostRelevant(results []models.ScoredResult) models.ScoredResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.SimilarityScore > best.SimilarityScore {
			best = r
		}
	}
	return best
}
