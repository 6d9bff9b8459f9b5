package models

import (
	"strings"

	"github.com/google/uuid"
)

// Section identifies one of the fixed topics a rental terms record is split into.
type Section string

const (
	SectionRentalInformation      Section = "rental_information"
	SectionPaymentInformation     Section = "payment_information"
	SectionProtectionConditions   Section = "protection_conditions"
	SectionAuthorizedDrivingAreas Section = "authorized_driving_areas"
	SectionExtras                 Section = "extras"
	SectionOtherChargesAndTaxes   Section = "other_charges_and_taxes"
	SectionVAT                    Section = "vat"
)

// Sections lists every section in storage and rendering order.
var Sections = [...]Section{
	SectionRentalInformation,
	SectionPaymentInformation,
	SectionProtectionConditions,
	SectionAuthorizedDrivingAreas,
	SectionExtras,
	SectionOtherChargesAndTaxes,
	SectionVAT,
}

// UnknownValue replaces a missing country or vehicle type.
const UnknownValue = "Unknown"

// Title returns the human readable label, e.g. "Other Charges And Taxes".
func (s Section) Title() string {
	words := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// RentalTermsRecord is one row of the corpus: the terms for a country and vehicle type.
// An empty or blank section means the record has nothing on that topic.
type RentalTermsRecord struct {
	ID                     uuid.UUID `db:"id" yaml:"-"`
	Country                string    `db:"country" yaml:"country"`
	VehicleType            string    `db:"vehicle_type" yaml:"vehicle_type"`
	RentalInformation      string    `db:"rental_information" yaml:"rental_information"`
	PaymentInformation     string    `db:"payment_information" yaml:"payment_information"`
	ProtectionConditions   string    `db:"protection_conditions" yaml:"protection_conditions"`
	AuthorizedDrivingAreas string    `db:"authorized_driving_areas" yaml:"authorized_driving_areas"`
	Extras                 string    `db:"extras" yaml:"extras"`
	OtherChargesAndTaxes   string    `db:"other_charges_and_taxes" yaml:"other_charges_and_taxes"`
	VAT                    string    `db:"vat" yaml:"vat"`
}

// Section returns the content stored for s, or "" for an unknown section.
func (r *RentalTermsRecord) Section(s Section) string {
	switch s {
	case SectionRentalInformation:
		return r.RentalInformation
	case SectionPaymentInformation:
		return r.PaymentInformation
	case SectionProtectionConditions:
		return r.ProtectionConditions
	case SectionAuthorizedDrivingAreas:
		return r.AuthorizedDrivingAreas
	case SectionExtras:
		return r.Extras
	case SectionOtherChargesAndTaxes:
		return r.OtherChargesAndTaxes
	case SectionVAT:
		return r.VAT
	}
	return ""
}

// SetSection stores content for s. Unknown sections are ignored.
func (r *RentalTermsRecord) SetSection(s Section, content string) {
	switch s {
	case SectionRentalInformation:
		r.RentalInformation = content
	case SectionPaymentInformation:
		r.PaymentInformation = content
	case SectionProtectionConditions:
		r.ProtectionConditions = content
	case SectionAuthorizedDrivingAreas:
		r.AuthorizedDrivingAreas = content
	case SectionExtras:
		r.Extras = content
	case SectionOtherChargesAndTaxes:
		r.OtherChargesAndTaxes = content
	case SectionVAT:
		r.VAT = content
	}
}

// HasContent reports whether s holds non-blank text.
func (r *RentalTermsRecord) HasContent(s Section) bool {
	return strings.TrimSpace(r.Section(s)) != ""
}
