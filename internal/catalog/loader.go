package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"balloon_ofp/internal/models"
)

type fleetFile struct {
	Aircraft []models.Aircraft `yaml:"aircraft"`
}

type rosterFile struct {
	Pilots []pilotEntry `yaml:"pilots"`
}

// pilotEntry keeps expiry dates as strings so that quoted and unquoted YAML dates decode the same way
type pilotEntry struct {
	ID                     string `yaml:"id"`
	Name                   string `yaml:"name"`
	LicenseNumber          string `yaml:"license_number"`
	LicenseType            string `yaml:"license_type"`
	LicenseExpiry          string `yaml:"license_expiry"`
	MedicalExpiry          string `yaml:"medical_expiry"`
	ProficiencyCheckExpiry string `yaml:"proficiency_check_expiry"`
	Valid                  bool   `yaml:"valid"`
}

// LoadFleet reads a fleet definition from a YAML file
func LoadFleet(path string) ([]models.Aircraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fleet file %s: %w", path, err)
	}

	var f fleetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fleet file %s: %w", path, err)
	}
	if len(f.Aircraft) == 0 {
		return nil, fmt.Errorf("fleet file %s defines no aircraft", path)
	}

	return f.Aircraft, nil
}

// LoadRoster reads a pilot roster from a YAML file
func LoadRoster(path string) ([]models.Pilot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}
	if len(f.Pilots) == 0 {
		return nil, fmt.Errorf("roster file %s defines no pilots", path)
	}

	pilots := make([]models.Pilot, 0, len(f.Pilots))
	for _, e := range f.Pilots {
		p := models.Pilot{
			ID:            e.ID,
			Name:          e.Name,
			LicenseNumber: e.LicenseNumber,
			LicenseType:   e.LicenseType,
			Valid:         e.Valid,
		}
		if p.LicenseExpiry, err = parseDate(e.LicenseExpiry); err != nil {
			return nil, fmt.Errorf("pilot %s license_expiry: %w", e.Name, err)
		}
		if p.MedicalExpiry, err = parseDate(e.MedicalExpiry); err != nil {
			return nil, fmt.Errorf("pilot %s medical_expiry: %w", e.Name, err)
		}
		if p.ProficiencyCheckExpiry, err = parseDate(e.ProficiencyCheckExpiry); err != nil {
			return nil, fmt.Errorf("pilot %s proficiency_check_expiry: %w", e.Name, err)
		}
		pilots = append(pilots, p)
	}

	return pilots, nil
}

func parseDate(s string) (time.Time, error) {
	if len(s) > len(models.DateLayout) {
		// tolerate full timestamps such as 2026-06-15T00:00:00Z
		s = s[:len(models.DateLayout)]
	}
	return time.Parse(models.DateLayout, s)
}
