package models

import "time"

// DateLayout is the calendar date format used for flight dates and document expiries
const DateLayout = "2006-01-02"

// Pilot represents a rostered pilot and the expiry dates of their documents
type Pilot struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	LicenseNumber          string    `json:"license_number"`
	LicenseType            string    `json:"license_type"`
	LicenseExpiry          time.Time `json:"license_expiry"`
	MedicalExpiry          time.Time `json:"medical_expiry"`
	ProficiencyCheckExpiry time.Time `json:"proficiency_check_expiry"`
	Valid                  bool      `json:"valid"` // Roster flag as maintained by the operator, not the computed outcome
}
