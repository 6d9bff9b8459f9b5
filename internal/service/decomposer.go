package service

import (
	"strings"

	"rental-terms-qa/internal/models"
)

// Decompose splits every record into one retrievable document per non-blank section.
// Documents follow record order, then section order. Duplicate content is kept.
func Decompose(records []models.RentalTermsRecord) []models.RetrievableDocument {
	var documents []models.RetrievableDocument

	for i := range records {
		record := &records[i]
		fullText := buildFullText(record)

		for _, section := range models.Sections {
			if !record.HasContent(section) {
				continue
			}
			documents = append(documents, models.RetrievableDocument{
				Country:     record.Country,
				VehicleType: record.VehicleType,
				Section:     section,
				Content:     record.Section(section),
				FullText:    fullText,
			})
		}
	}

	return documents
}

// buildFullText renders the whole record on one line so the embedding sees cross-section context.
func buildFullText(record *models.RentalTermsRecord) string {
	parts := []string{"Country: " + record.Country + " Vehicle Type: " + record.VehicleType}
	for _, section := range models.Sections {
		if record.HasContent(section) {
			parts = append(parts, section.Title()+": "+record.Section(section))
		}
	}
	return strings.Join(parts, " ")
}
