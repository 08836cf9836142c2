package catalog

import (
	"fmt"
	"strings"
	"time"

	"balloon_ofp/internal/models"
)

// DefaultExpiryWarningWindow is how far ahead an upcoming document expiry is reported
const DefaultExpiryWarningWindow = 30 * 24 * time.Hour

// DefaultRoster is the pilot roster used when no roster file is configured.
// Its document dates are fixed; configure a roster file for a current fleet.
var DefaultRoster = []models.Pilot{
	{
		ID:                     "1",
		Name:                   "Manel Rodriguez",
		LicenseNumber:          "BPL(H) 12345",
		LicenseType:            "BPL(H)",
		LicenseExpiry:          mustDate("2026-06-15"),
		MedicalExpiry:          mustDate("2025-12-31"),
		ProficiencyCheckExpiry: mustDate("2025-11-30"),
		Valid:                  true,
	},
	{
		ID:                     "2",
		Name:                   "Jose Luis Calderon",
		LicenseNumber:          "BPL(H) 23456",
		LicenseType:            "BPL(H)",
		LicenseExpiry:          mustDate("2027-03-20"),
		MedicalExpiry:          mustDate("2026-01-15"),
		ProficiencyCheckExpiry: mustDate("2025-10-10"),
		Valid:                  true,
	},
	{
		ID:                     "3",
		Name:                   "Luis Ferreira",
		LicenseNumber:          "BPL(H) 34567",
		LicenseType:            "BPL(H)",
		LicenseExpiry:          mustDate("2025-09-10"),
		MedicalExpiry:          mustDate("2025-08-20"),
		ProficiencyCheckExpiry: mustDate("2025-07-15"),
		Valid:                  false,
	},
}

// PilotValidation is the outcome of checking a pilot's documents on a given date
type PilotValidation struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// PilotRegistry is a read-only lookup table of rostered pilots.
// IDs and names are both unique so that a name lookup can never be ambiguous.
type PilotRegistry struct {
	pilots        []models.Pilot
	byID          map[string]int
	byName        map[string]int
	warningWindow time.Duration
}

// NewPilotRegistry builds a registry from the given roster.
// A non-positive warning window falls back to DefaultExpiryWarningWindow.
func NewPilotRegistry(pilots []models.Pilot, warningWindow time.Duration) (*PilotRegistry, error) {
	if warningWindow <= 0 {
		warningWindow = DefaultExpiryWarningWindow
	}

	r := &PilotRegistry{
		pilots:        make([]models.Pilot, 0, len(pilots)),
		byID:          make(map[string]int, len(pilots)),
		byName:        make(map[string]int, len(pilots)),
		warningWindow: warningWindow,
	}

	for _, p := range pilots {
		id := strings.TrimSpace(p.ID)
		name := normalizeName(p.Name)
		if id == "" || name == "" {
			return nil, fmt.Errorf("pilot %q: id and name are required", p.Name)
		}
		if _, exists := r.byID[id]; exists {
			return nil, fmt.Errorf("pilot id %s: %w", id, ErrDuplicateEntry)
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("pilot name %q: %w", p.Name, ErrDuplicateEntry)
		}
		r.byID[id] = len(r.pilots)
		r.byName[name] = len(r.pilots)
		r.pilots = append(r.pilots, p)
	}

	return r, nil
}

// DefaultPilotRegistry returns a registry of DefaultRoster
func DefaultPilotRegistry() *PilotRegistry {
	r, err := NewPilotRegistry(DefaultRoster, DefaultExpiryWarningWindow)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a pilot by ID, falling back to a case-insensitive name match
func (r *PilotRegistry) Lookup(nameOrID string) (models.Pilot, bool) {
	if r == nil {
		return models.Pilot{}, false
	}
	if idx, ok := r.byID[strings.TrimSpace(nameOrID)]; ok {
		return r.pilots[idx], true
	}
	if idx, ok := r.byName[normalizeName(nameOrID)]; ok {
		return r.pilots[idx], true
	}
	return models.Pilot{}, false
}

// All returns a copy of the roster in declaration order
func (r *PilotRegistry) All() []models.Pilot {
	out := make([]models.Pilot, len(r.pilots))
	copy(out, r.pilots)
	return out
}

// Validate checks the pilot's license, medical and proficiency check against asOf.
// Comparison is by calendar day in UTC: a document expiring on asOf is still current.
// Expiring-soon warnings do not make the pilot invalid.
func (r *PilotRegistry) Validate(pilot models.Pilot, asOf time.Time) PilotValidation {
	window := DefaultExpiryWarningWindow
	if r != nil {
		window = r.warningWindow
	}

	today := truncateDay(asOf)
	horizon := today.Add(window)
	days := int(window.Hours() / 24)

	checks := []struct {
		expired  string
		expiring string
		expiry   time.Time
	}{
		{"License expired", "License expiring within %d days", pilot.LicenseExpiry},
		{"Medical certificate expired", "Medical expiring within %d days", pilot.MedicalExpiry},
		{"Proficiency check expired", "Proficiency check expiring within %d days", pilot.ProficiencyCheckExpiry},
	}

	warnings := make([]string, 0, len(checks))
	for _, c := range checks {
		expiry := truncateDay(c.expiry)
		switch {
		case expiry.Before(today):
			warnings = append(warnings, c.expired)
		case expiry.Before(horizon):
			warnings = append(warnings, fmt.Sprintf(c.expiring, days))
		}
	}

	valid := true
	for _, w := range warnings {
		if strings.Contains(w, "expired") {
			valid = false
			break
		}
	}

	return PilotValidation{Valid: valid, Warnings: warnings}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func mustDate(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
