package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"balloon_ofp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestAircraftCatalog_Lookup(t *testing.T) {
	c := DefaultAircraftCatalog()

	ac, ok := c.Lookup("CS-UMA")
	require.True(t, ok)
	assert.Equal(t, 425000.0, ac.VolumeCubicFeet)
	assert.Equal(t, 485.0, ac.EmptyWeightKg)

	ac, ok = c.Lookup(" cs-cam ")
	require.True(t, ok)
	assert.Equal(t, "Cameron Z-450", ac.Model)

	_, ok = c.Lookup("CS-XXX")
	assert.False(t, ok)

	_, ok = c.Lookup("")
	assert.False(t, ok)
}

func TestAircraftCatalog_NilLookup(t *testing.T) {
	var c *AircraftCatalog
	_, ok := c.Lookup("CS-UMA")
	assert.False(t, ok)
}

func TestAircraftCatalog_Registrations(t *testing.T) {
	c := DefaultAircraftCatalog()
	assert.Equal(t, []string{"CS-UMA", "CS-UMB", "CS-CAM"}, c.Registrations())
}

func TestAircraftCatalog_AllReturnsCopy(t *testing.T) {
	c := DefaultAircraftCatalog()
	fleet := c.All()
	fleet[0].EmptyWeightKg = 1

	ac, ok := c.Lookup("CS-UMA")
	require.True(t, ok)
	assert.Equal(t, 485.0, ac.EmptyWeightKg)
}

func TestNewAircraftCatalog_Duplicate(t *testing.T) {
	_, err := NewAircraftCatalog([]models.Aircraft{
		{Registration: "CS-UMA"},
		{Registration: "cs-uma"},
	})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	_, err = NewAircraftCatalog([]models.Aircraft{{Model: "No registration"}})
	assert.Error(t, err)
}

func TestPilotRegistry_Lookup(t *testing.T) {
	r := DefaultPilotRegistry()

	p, ok := r.Lookup("2")
	require.True(t, ok)
	assert.Equal(t, "Jose Luis Calderon", p.Name)

	p, ok = r.Lookup("manel  RODRIGUEZ")
	require.True(t, ok)
	assert.Equal(t, "1", p.ID)

	_, ok = r.Lookup("Nobody")
	assert.False(t, ok)
}

func TestNewPilotRegistry_Duplicates(t *testing.T) {
	tests := []struct {
		name   string
		pilots []models.Pilot
	}{
		{
			name:   "duplicate id",
			pilots: []models.Pilot{{ID: "1", Name: "A"}, {ID: "1", Name: "B"}},
		},
		{
			name:   "duplicate name",
			pilots: []models.Pilot{{ID: "1", Name: "Ana Silva"}, {ID: "2", Name: "ana silva"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPilotRegistry(tt.pilots, 0)
			assert.ErrorIs(t, err, ErrDuplicateEntry)
		})
	}
}

func TestPilotRegistry_Validate(t *testing.T) {
	r := DefaultPilotRegistry()
	asOf := date(t, "2026-10-18")
	current := date(t, "2030-01-01")

	tests := []struct {
		name         string
		pilot        models.Pilot
		wantValid    bool
		wantWarnings []string
	}{
		{
			name: "all current",
			pilot: models.Pilot{
				LicenseExpiry: current, MedicalExpiry: current, ProficiencyCheckExpiry: current,
			},
			wantValid:    true,
			wantWarnings: []string{},
		},
		{
			name: "proficiency expired yesterday",
			pilot: models.Pilot{
				LicenseExpiry: current, MedicalExpiry: current, ProficiencyCheckExpiry: date(t, "2026-10-17"),
			},
			wantValid:    false,
			wantWarnings: []string{"Proficiency check expired"},
		},
		{
			name: "medical expiring in 10 days",
			pilot: models.Pilot{
				LicenseExpiry: current, MedicalExpiry: date(t, "2026-10-28"), ProficiencyCheckExpiry: current,
			},
			wantValid:    true,
			wantWarnings: []string{"Medical expiring within 30 days"},
		},
		{
			name: "license expires today",
			pilot: models.Pilot{
				LicenseExpiry: asOf, MedicalExpiry: current, ProficiencyCheckExpiry: current,
			},
			wantValid:    true,
			wantWarnings: []string{"License expiring within 30 days"},
		},
		{
			name: "expiry exactly at window end is not reported",
			pilot: models.Pilot{
				LicenseExpiry: date(t, "2026-11-17"), MedicalExpiry: current, ProficiencyCheckExpiry: current,
			},
			wantValid:    true,
			wantWarnings: []string{},
		},
		{
			name: "mixed",
			pilot: models.Pilot{
				LicenseExpiry: date(t, "2025-01-01"), MedicalExpiry: date(t, "2026-11-01"), ProficiencyCheckExpiry: date(t, "2026-01-01"),
			},
			wantValid: false,
			wantWarnings: []string{
				"License expired",
				"Medical expiring within 30 days",
				"Proficiency check expired",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Validate(tt.pilot, asOf)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantWarnings, got.Warnings)
		})
	}
}

func TestPilotRegistry_ValidateTimeOfDay(t *testing.T) {
	r := DefaultPilotRegistry()
	pilot := models.Pilot{
		LicenseExpiry:          date(t, "2026-10-18"),
		MedicalExpiry:          date(t, "2030-01-01"),
		ProficiencyCheckExpiry: date(t, "2030-01-01"),
	}

	got := r.Validate(pilot, time.Date(2026, 10, 18, 17, 30, 0, 0, time.UTC))
	assert.True(t, got.Valid)
}

func TestDefaultRoster(t *testing.T) {
	r := DefaultPilotRegistry()
	asOf := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	manel, ok := r.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, date(t, "2026-06-15"), manel.LicenseExpiry)
	assert.Equal(t, date(t, "2025-12-31"), manel.MedicalExpiry)
	assert.Equal(t, date(t, "2025-11-30"), manel.ProficiencyCheckExpiry)
	assert.Equal(t, PilotValidation{Valid: true, Warnings: []string{}}, r.Validate(manel, asOf))

	jose, ok := r.Lookup("Jose Luis Calderon")
	require.True(t, ok)
	assert.Equal(t, date(t, "2027-03-20"), jose.LicenseExpiry)
	assert.Equal(t, date(t, "2026-01-15"), jose.MedicalExpiry)
	assert.Equal(t, date(t, "2025-10-10"), jose.ProficiencyCheckExpiry)
	assert.Equal(t, PilotValidation{Valid: true, Warnings: []string{"Proficiency check expiring within 30 days"}}, r.Validate(jose, asOf))

	luis, ok := r.Lookup("3")
	require.True(t, ok)
	assert.Equal(t, date(t, "2025-09-10"), luis.LicenseExpiry)
	assert.Equal(t, date(t, "2025-08-20"), luis.MedicalExpiry)
	assert.Equal(t, date(t, "2025-07-15"), luis.ProficiencyCheckExpiry)
	assert.False(t, luis.Valid)
	assert.False(t, r.Validate(luis, asOf).Valid)
}

func TestPilotRegistry_CustomWindow(t *testing.T) {
	r, err := NewPilotRegistry(DefaultRoster, 60*24*time.Hour)
	require.NoError(t, err)

	pilot := models.Pilot{
		LicenseExpiry:          date(t, "2026-12-01"),
		MedicalExpiry:          date(t, "2030-01-01"),
		ProficiencyCheckExpiry: date(t, "2030-01-01"),
	}
	got := r.Validate(pilot, date(t, "2026-10-18"))
	assert.Equal(t, []string{"License expiring within 60 days"}, got.Warnings)
}

func TestLoadFleet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	content := `aircraft:
  - registration: CS-TST
    model: Test 300
    serial_number: "300/1"
    volume_cubic_feet: 300000
    empty_weight_kg: 400
    max_take_off_mass_kg: 1500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fleet, err := LoadFleet(path)
	require.NoError(t, err)
	require.Len(t, fleet, 1)
	assert.Equal(t, "CS-TST", fleet[0].Registration)
	assert.Equal(t, 1500.0, fleet[0].MaxTakeOffMassKg)
	assert.True(t, fleet[0].HasMTOM())
}

func TestLoadFleet_Errors(t *testing.T) {
	_, err := LoadFleet(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aircraft: []\n"), 0o644))
	_, err = LoadFleet(path)
	assert.Error(t, err)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := `pilots:
  - id: "7"
    name: Ana Silva
    license_number: BPL(H) 77777
    license_type: BPL(H)
    license_expiry: 2028-01-31
    medical_expiry: "2027-06-30"
    proficiency_check_expiry: 2027-03-01
    valid: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pilots, err := LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, pilots, 1)
	assert.Equal(t, date(t, "2028-01-31"), pilots[0].LicenseExpiry)
	assert.Equal(t, date(t, "2027-06-30"), pilots[0].MedicalExpiry)
	assert.Equal(t, date(t, "2027-03-01"), pilots[0].ProficiencyCheckExpiry)
}

func TestLoadRoster_BadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := `pilots:
  - id: "7"
    name: Ana Silva
    license_expiry: soon
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadRoster(path)
	assert.Error(t, err)
}
