// Package seed reads rental terms from YAML files for the seed importer.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rental-terms-qa/internal/models"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a seed file.
type File struct {
	RentalTerms []models.RentalTermsRecord `yaml:"rental_terms"`
}

// LoadFile reads and validates the seed file at path.
func LoadFile(path string) ([]models.RentalTermsRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	records, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse decodes a seed document. Unknown keys are rejected so typos in section names surface.
func Parse(r io.Reader) ([]models.RentalTermsRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed file is empty")
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range file.RentalTerms {
		record := &file.RentalTerms[i]
		record.Country = strings.TrimSpace(record.Country)
		record.VehicleType = strings.TrimSpace(record.VehicleType)

		if err := validate(record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		for _, section := range models.Sections {
			record.SetSection(section, strings.TrimSpace(record.Section(section)))
		}
	}

	return file.RentalTerms, nil
}

func validate(record *models.RentalTermsRecord) error {
	if record.Country == "" {
		return errors.New("country is required")
	}
	if record.VehicleType == "" {
		return errors.New("vehicle_type is required")
	}
	for _, section := range models.Sections {
		if record.HasContent(section) {
			return nil
		}
	}
	return fmt.Errorf("%s / %s has no section content", record.Country, record.VehicleType)
}
