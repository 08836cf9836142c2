package catalog

import (
	"errors"
	"fmt"
	"strings"

	"balloon_ofp/internal/models"
)

// ErrDuplicateEntry is returned when reference data contains the same key twice
var ErrDuplicateEntry = errors.New("duplicate catalog entry")

// DefaultFleet is the operator fleet used when no fleet file is configured
var DefaultFleet = []models.Aircraft{
	{
		Registration:    "CS-UMA",
		Model:           "Ultramagic N-425",
		SerialNumber:    "425/85",
		VolumeCubicFeet: 425000,
		EmptyWeightKg:   485,
		Envelope:        "Ultramagic N-425 S/N 425/85",
		Basket:          "Ultramagic 4-passenger wicker basket",
		Burner:          "Ultramagic MK-32 double burner",
		Cylinders:       "4x 40L stainless steel cylinders",
	},
	{
		Registration:    "CS-UMB",
		Model:           "Ultramagic N-425",
		SerialNumber:    "425/101",
		VolumeCubicFeet: 425000,
		EmptyWeightKg:   520,
		Envelope:        "Ultramagic N-425 S/N 425/101",
		Basket:          "Ultramagic 6-passenger wicker basket",
		Burner:          "Ultramagic MK-32 triple burner",
		Cylinders:       "6x 40L stainless steel cylinders",
	},
	{
		Registration:    "CS-CAM",
		Model:           "Cameron Z-450",
		SerialNumber:    "11609",
		VolumeCubicFeet: 450000,
		EmptyWeightKg:   550,
		Envelope:        "Cameron Z-450 S/N 11609",
		Basket:          "Cameron 8-passenger wicker basket",
		Burner:          "Cameron Dual Burner System",
		Cylinders:       "6x 40L titanium cylinders",
	},
}

// AircraftCatalog is a read-only lookup table of the fleet keyed by registration
type AircraftCatalog struct {
	fleet []models.Aircraft
	byReg map[string]int
}

// NewAircraftCatalog builds a catalog from the given fleet.
// Registrations are matched case-insensitively and must be unique.
func NewAircraftCatalog(fleet []models.Aircraft) (*AircraftCatalog, error) {
	c := &AircraftCatalog{
		fleet: make([]models.Aircraft, 0, len(fleet)),
		byReg: make(map[string]int, len(fleet)),
	}

	for _, ac := range fleet {
		key := normalizeRegistration(ac.Registration)
		if key == "" {
			return nil, fmt.Errorf("aircraft %q has no registration", ac.Model)
		}
		if _, exists := c.byReg[key]; exists {
			return nil, fmt.Errorf("aircraft %s: %w", ac.Registration, ErrDuplicateEntry)
		}
		c.byReg[key] = len(c.fleet)
		c.fleet = append(c.fleet, ac)
	}

	return c, nil
}

// DefaultAircraftCatalog returns a catalog of DefaultFleet
func DefaultAircraftCatalog() *AircraftCatalog {
	c, err := NewAircraftCatalog(DefaultFleet)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the aircraft with the given registration
func (c *AircraftCatalog) Lookup(registration string) (models.Aircraft, bool) {
	if c == nil {
		return models.Aircraft{}, false
	}
	idx, ok := c.byReg[normalizeRegistration(registration)]
	if !ok {
		return models.Aircraft{}, false
	}
	return c.fleet[idx], true
}

// Registrations lists the fleet registrations in declaration order
func (c *AircraftCatalog) Registrations() []string {
	regs := make([]string, 0, len(c.fleet))
	for _, ac := range c.fleet {
		regs = append(regs, ac.Registration)
	}
	return regs
}

// All returns a copy of the fleet in declaration order
func (c *AircraftCatalog) All() []models.Aircraft {
	out := make([]models.Aircraft, len(c.fleet))
	copy(out, c.fleet)
	return out
}

func normalizeRegistration(registration string) string {
	return strings.ToUpper(strings.TrimSpace(registration))
}
