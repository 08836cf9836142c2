// Package compliance decides whether a flight plan may be submitted.
//
// Two kinds of failure are reported separately. Structural failures are missing or
// out-of-range fields and unconfirmed declarations. Performance gate failures are
// derived-metric limits (overload, MTOM, fuel reserve): a plan can be structurally
// complete and still unsafe to fly.
package compliance

import (
	"fmt"
	"strings"

	"balloon_ofp/internal/models"
	"balloon_ofp/internal/performance"
)

// Field bounds
const (
	MinTemperatureC      = -20.0
	MaxTemperatureC      = 50.0
	MinPassengerWeightKg = 1.0
	MaxPassengerWeightKg = 200.0
	MinFuelLiters        = 1.0
	MinConsumptionLiters = 1.0
)

// Gate names
const (
	GateTrafficLoad = "traffic_load"
	GateMTOM        = "mtom"
	GateFuelReserve = "fuel_reserve"
)

// FieldError is a structural problem tied to one field of the plan
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// GateFailure is a violated performance limit.
// Margin is limit minus value, so it is negative by the amount of the excess.
type GateFailure struct {
	Gate    string  `json:"gate"`
	Message string  `json:"message"`
	Value   float64 `json:"value"`
	Limit   float64 `json:"limit"`
	Margin  float64 `json:"margin"`
}

func (g GateFailure) Error() string {
	return g.Gate + ": " + g.Message
}

// Result is the outcome of validating a plan
type Result struct {
	Structural []FieldError  `json:"structural,omitempty"`
	Gates      []GateFailure `json:"gates,omitempty"`
}

// Accepted reports whether the plan passed every rule
func (r Result) Accepted() bool {
	return len(r.Structural) == 0 && len(r.Gates) == 0
}

// StructurallyValid reports whether every field rule passed
func (r Result) StructurallyValid() bool {
	return len(r.Structural) == 0
}

// GatesPassed reports whether every performance gate passed
func (r Result) GatesPassed() bool {
	return len(r.Gates) == 0
}

type declaration struct {
	field   string
	message string
	get     func(models.Declarations) bool
}

// declarations lists every attestation that must be confirmed, in form order
var declarations = []declaration{
	{"declarations.notams_checked", "NOTAMs must be checked", func(d models.Declarations) bool { return d.NOTAMsChecked }},
	{"declarations.meteo_minima_vfr", "Meteo must be above VFR minima", func(d models.Declarations) bool { return d.MeteoMinimaVFR }},
	{"declarations.afm_limitations", "Must be within AFM limitations", func(d models.Declarations) bool { return d.AFMLimitations }},
	{"declarations.take_off_conditions_ok", "Take-off conditions must be OK", func(d models.Declarations) bool { return d.TakeOffConditionsOK }},
	{"declarations.landing_conditions_ok", "Landing conditions must be OK", func(d models.Declarations) bool { return d.LandingConditionsOK }},
	{"declarations.alcohol_drugs", "Pilot must declare no alcohol/drugs", func(d models.Declarations) bool { return d.AlcoholDrugs }},
	{"declarations.rest", "Pilot must declare adequate rest", func(d models.Declarations) bool { return d.Rest }},
	{"declarations.pre_flight_inspection", "Pilot must complete pre-flight inspection", func(d models.Declarations) bool { return d.PreFlightInspection }},
	{"declarations.no_smoking", "No smoking must be agreed", func(d models.Declarations) bool { return d.NoSmoking }},
	{"declarations.no_weapons", "No weapons must be agreed", func(d models.Declarations) bool { return d.NoWeapons }},
	{"declarations.passenger_briefing_completed", "Passenger briefing must be completed", func(d models.Declarations) bool { return d.PassengerBriefingCompleted }},
	{"declarations.dangerous_goods_briefing", "DG briefing must be completed", func(d models.Declarations) bool { return d.DangerousGoodsBriefing }},
}

// Validate applies the structural rules and the performance gates to a plan.
// metrics must be computed from the same plan and aircraft; aircraft may be nil.
func Validate(plan models.FlightPlan, metrics models.DerivedMetrics, aircraft *models.Aircraft) Result {
	return Result{
		Structural: ValidateStructure(plan),
		Gates:      CheckGates(plan, metrics, aircraft),
	}
}

// ValidateStructure returns every structural problem of the plan, in form order
func ValidateStructure(plan models.FlightPlan) []FieldError {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	required := func(field, value, message string) {
		if strings.TrimSpace(value) == "" {
			add(field, "%s", message)
		}
	}

	required("prepared_by", plan.PreparedBy, "Prepared by is required")
	required("aircraft_registration", plan.AircraftRegistration, "Aircraft registration is required")
	if plan.MassMethod != models.MassMethodDeclared {
		add("mass_determination_method", "Mass determination method must be %q", models.MassMethodDeclared)
	}
	required("flight_date", plan.FlightDate, "Flight date is required")
	required("pilot_name", plan.PilotName, "Pilot name is required")
	required("weather.source", plan.Weather.Source, "Weather source is required")
	required("alternative_plan", plan.AlternativePlan, "Alternative plan is required")
	required("alternative_criteria", plan.AlternativeCriteria, "Alternative criteria is required")

	for _, d := range declarations {
		if !d.get(plan.Declarations) {
			add(d.field, "%s", d.message)
		}
	}

	if t := plan.Weather.TemperatureCelsius; t < MinTemperatureC || t > MaxTemperatureC {
		add("weather.temperature_celsius", "Temperature must be between %g and %g °C", MinTemperatureC, MaxTemperatureC)
	}

	switch plan.Risk.ATSFlightPlanFile {
	case models.ATSFPLFiled, models.ATSFPLNotFiled, models.ATSFPLNotRequired:
	default:
		add("risk.ats_fpl_status", "ATS flight plan status must be yes, no or not_required")
	}

	if len(plan.Passengers) == 0 {
		add("passengers", "At least one passenger required")
	}
	for i, p := range plan.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			add(fmt.Sprintf("passengers[%d].name", i), "Name is required")
		}
		if p.WeightKg < MinPassengerWeightKg {
			add(fmt.Sprintf("passengers[%d].weight_kg", i), "Weight must be positive")
		} else if p.WeightKg > MaxPassengerWeightKg {
			add(fmt.Sprintf("passengers[%d].weight_kg", i), "Weight seems unrealistic")
		}
	}

	if plan.Fuel.TotalLiters < MinFuelLiters {
		add("fuel.total_liters", "Total fuel is required")
	}
	if plan.Fuel.EstimatedConsumptionLiters < MinConsumptionLiters {
		add("fuel.estimated_consumption_liters", "Estimated consumption is required")
	}
	switch plan.Fuel.ReserveCriterion {
	case models.Reserve30Min, models.Reserve15Min:
	default:
		add("fuel.reserve_criterion", "Reserve criterion must be 30min or 15min")
	}

	return errs
}

// CheckGates returns every performance limit the plan violates
func CheckGates(plan models.FlightPlan, metrics models.DerivedMetrics, aircraft *models.Aircraft) []GateFailure {
	var gates []GateFailure

	if metrics.TrafficLoadKg > metrics.AvailablePayloadKg {
		gates = append(gates, GateFailure{
			Gate:    GateTrafficLoad,
			Message: fmt.Sprintf("Traffic load %.2f kg exceeds available payload %.2f kg", metrics.TrafficLoadKg, metrics.AvailablePayloadKg),
			Value:   metrics.TrafficLoadKg,
			Limit:   metrics.AvailablePayloadKg,
			Margin:  margin(metrics.AvailablePayloadKg, metrics.TrafficLoadKg),
		})
	}

	if aircraft != nil && aircraft.HasMTOM() && metrics.TakeOffMassKg > aircraft.MaxTakeOffMassKg {
		gates = append(gates, GateFailure{
			Gate:    GateMTOM,
			Message: fmt.Sprintf("Take-off mass %.2f kg exceeds MTOM %.2f kg", metrics.TakeOffMassKg, aircraft.MaxTakeOffMassKg),
			Value:   metrics.TakeOffMassKg,
			Limit:   aircraft.MaxTakeOffMassKg,
			Margin:  margin(aircraft.MaxTakeOffMassKg, metrics.TakeOffMassKg),
		})
	}

	threshold := performance.ReserveThreshold(plan.Fuel.ReserveCriterion)
	if !performance.IsFuelReserveSufficient(metrics.FuelReserveMinutes, plan.Fuel.ReserveCriterion) {
		gates = append(gates, GateFailure{
			Gate:    GateFuelReserve,
			Message: fmt.Sprintf("Fuel reserve %d min is below the %d min requirement", metrics.FuelReserveMinutes, threshold),
			Value:   float64(metrics.FuelReserveMinutes),
			Limit:   float64(threshold),
			Margin:  float64(metrics.FuelReserveMinutes - threshold),
		})
	}

	return gates
}

func margin(limit, value float64) float64 {
	return performance.Round2(limit - value)
}
