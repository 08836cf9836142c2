package flightplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/mohae/deepcopy"

	"balloon_ofp/internal/catalog"
	"balloon_ofp/internal/compliance"
	"balloon_ofp/internal/models"
	"balloon_ofp/internal/performance"
)

// RejectionError is returned by Assemble when a plan fails validation.
// It carries every structural problem and every failed gate, not just the first.
type RejectionError struct {
	Result compliance.Result
}

func (e *RejectionError) Error() string {
	parts := make([]string, 0, 2)
	if n := len(e.Result.Structural); n > 0 {
		parts = append(parts, fmt.Sprintf("%d field error(s)", n))
	}
	if n := len(e.Result.Gates); n > 0 {
		parts = append(parts, fmt.Sprintf("%d performance gate failure(s)", n))
	}
	return "flight plan rejected: " + strings.Join(parts, ", ")
}

// Assessment is everything known about a plan at a point in time
type Assessment struct {
	Aircraft        *models.Aircraft         `json:"aircraft,omitempty"`
	Pilot           *models.Pilot            `json:"pilot,omitempty"`
	PilotValidation *catalog.PilotValidation `json:"pilot_validation,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Metrics         models.DerivedMetrics    `json:"metrics"`
	Validation      compliance.Result        `json:"validation"`
	Submittable     bool                     `json:"submittable"`
}

// Assembler turns an authored plan into a validated record
type Assembler struct {
	aircraft *catalog.AircraftCatalog
	pilots   *catalog.PilotRegistry
	calc     *performance.Calculator
}

// NewAssembler creates an assembler over the given reference data and calculator
func NewAssembler(aircraft *catalog.AircraftCatalog, pilots *catalog.PilotRegistry, calc *performance.Calculator) *Assembler {
	return &Assembler{
		aircraft: aircraft,
		pilots:   pilots,
		calc:     calc,
	}
}

// Evaluate resolves the aircraft and pilot, computes the derived metrics and validates the plan.
// Lookup misses and pilot document warnings are reported but never block.
func (a *Assembler) Evaluate(plan models.FlightPlan, asOf time.Time) Assessment {
	var as Assessment

	if strings.TrimSpace(plan.AircraftRegistration) != "" {
		if ac, ok := a.aircraft.Lookup(plan.AircraftRegistration); ok {
			as.Aircraft = &ac
		} else {
			as.Warnings = append(as.Warnings, fmt.Sprintf("Aircraft %s not found in fleet", plan.AircraftRegistration))
		}
	}

	if pilot, ok := a.lookupPilot(plan); ok {
		v := a.pilots.Validate(pilot, asOf)
		as.Pilot = &pilot
		as.PilotValidation = &v
		as.Warnings = append(as.Warnings, v.Warnings...)
	} else if strings.TrimSpace(plan.PilotName) != "" || strings.TrimSpace(plan.PilotID) != "" {
		as.Warnings = append(as.Warnings, "Pilot not found in roster")
	}

	as.Metrics = a.calc.Compute(plan, as.Aircraft)
	as.Validation = compliance.Validate(plan, as.Metrics, as.Aircraft)
	as.Submittable = as.Validation.Accepted()

	return as
}

// Assemble validates the plan and returns a record ready for persistence.
// A plan failing any rule yields a *RejectionError.
func (a *Assembler) Assemble(plan models.FlightPlan, asOf time.Time) (*models.FlightPlanRecord, error) {
	as := a.Evaluate(plan, asOf)
	if !as.Submittable {
		return nil, &RejectionError{Result: as.Validation}
	}

	snapshot := deepcopy.Copy(plan).(models.FlightPlan)
	if snapshot.AircraftType == "" && as.Aircraft != nil {
		snapshot.AircraftType = as.Aircraft.Model
	}
	if as.Pilot != nil {
		if snapshot.PilotID == "" {
			snapshot.PilotID = as.Pilot.ID
		}
		if snapshot.PilotLicense == "" {
			snapshot.PilotLicense = as.Pilot.LicenseNumber
		}
	}

	return &models.FlightPlanRecord{
		Plan:          snapshot,
		Metrics:       as.Metrics,
		PilotWarnings: as.Warnings,
		Status:        models.StatusSubmitted,
		CreatedAt:     asOf.UTC(),
	}, nil
}

// lookupPilot tries the ID first and falls back to the name when the ID is unknown
func (a *Assembler) lookupPilot(plan models.FlightPlan) (models.Pilot, bool) {
	if id := strings.TrimSpace(plan.PilotID); id != "" {
		if p, ok := a.pilots.Lookup(id); ok {
			return p, true
		}
	}
	if name := strings.TrimSpace(plan.PilotName); name != "" {
		return a.pilots.Lookup(name)
	}
	return models.Pilot{}, false
}
