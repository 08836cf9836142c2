package models

import "time"

// ReserveCriterion selects the minimum fuel reserve a flight must carry
type ReserveCriterion string

const (
	Reserve30Min ReserveCriterion = "30min" // Standard reserve
	Reserve15Min ReserveCriterion = "15min" // Local operation or single tank
)

// ATSFlightPlanStatus records whether an ATS flight plan was filed
type ATSFlightPlanStatus string

const (
	ATSFPLFiled       ATSFlightPlanStatus = "yes"
	ATSFPLNotFiled    ATSFlightPlanStatus = "no"
	ATSFPLNotRequired ATSFlightPlanStatus = "not_required"
)

// MassMethodDeclared is the only accepted mass determination method
const MassMethodDeclared = "declared"

// StatusSubmitted marks a record accepted for persistence
const StatusSubmitted = "submitted"

// Passenger is a single person on the manifest
type Passenger struct {
	Name            string  `json:"name"`
	WeightKg        float64 `json:"weight_kg"`
	HasSpecialNeeds bool    `json:"has_special_needs"`
	Phone           string  `json:"phone,omitempty"`
}

// Declarations holds the attestations a pilot must confirm before a plan can be finalised.
// Every field must be true.
type Declarations struct {
	AlcoholDrugs               bool `json:"alcohol_drugs"`
	Rest                       bool `json:"rest"`
	PreFlightInspection        bool `json:"pre_flight_inspection"`
	NoSmoking                  bool `json:"no_smoking"`
	NoWeapons                  bool `json:"no_weapons"`
	NOTAMsChecked              bool `json:"notams_checked"`
	MeteoMinimaVFR             bool `json:"meteo_minima_vfr"`
	AFMLimitations             bool `json:"afm_limitations"`
	TakeOffConditionsOK        bool `json:"take_off_conditions_ok"`
	LandingConditionsOK        bool `json:"landing_conditions_ok"`
	PassengerBriefingCompleted bool `json:"passenger_briefing_completed"`
	DangerousGoodsBriefing     bool `json:"dangerous_goods_briefing"`
}

// RiskAssessment holds the site risk checks. These are informational and never block submission.
type RiskAssessment struct {
	PowerLines        bool                `json:"power_lines"`
	SolarCells        bool                `json:"solar_cells"`
	WildlifeAreas     bool                `json:"wildlife_areas"`
	CityCenterNoWind  bool                `json:"city_center_no_wind"`
	SpecialRiskNotes  string              `json:"special_risk_notes,omitempty"`
	LandingTypical    string              `json:"landing_options_typical,omitempty"`
	LandingAvoid      string              `json:"landing_options_avoid,omitempty"`
	AirspaceAffected  string              `json:"airspace_affected,omitempty"`
	FrequenciesATS    string              `json:"frequencies_ats,omitempty"`
	WeatherObsInSitu  string              `json:"weather_obs_in_situ,omitempty"`
	NOTAMReference    string              `json:"notam_reference,omitempty"`
	AlertingPerson    string              `json:"alerting_responsible_person,omitempty"`
	AlertingOverdue   bool                `json:"alerting_overdue_procedure"`
	ATSFlightPlanRef  string              `json:"ats_fpl_ref,omitempty"`
	ATSFlightPlanFile ATSFlightPlanStatus `json:"ats_fpl_status"`
}

// Weather holds the weather values entered on the plan.
// They are usually copied from a WeatherSample and may be overridden by the pilot.
type Weather struct {
	Source              string      `json:"source"`
	TemperatureCelsius  float64     `json:"temperature_celsius"`
	QNHHPa              float64     `json:"qnh_hpa,omitempty"`
	SurfaceWindSpeedKmh float64     `json:"surface_wind_speed_kmh,omitempty"`
	SurfaceWindDirDeg   float64     `json:"surface_wind_direction_deg,omitempty"`
	WindsAloft          []WindAloft `json:"winds_aloft,omitempty"`
}

// Fuel holds the fuel planning values for the flight
type Fuel struct {
	TotalLiters                float64          `json:"total_liters"`
	EstimatedConsumptionLiters float64          `json:"estimated_consumption_liters"`
	ReserveCriterion           ReserveCriterion `json:"reserve_criterion"`
	ReserveJustification       string           `json:"reserve_justification,omitempty"`
	ConsumptionSource          string           `json:"consumption_source,omitempty"`
}

// FlightPlan is the operational flight plan as authored by the pilot
type FlightPlan struct {
	FlightID             string         `json:"flight_id,omitempty"`
	PreparedBy           string         `json:"prepared_by"`
	FlightDate           string         `json:"flight_date"`
	PilotID              string         `json:"pilot_id,omitempty"`
	PilotName            string         `json:"pilot_name"`
	PilotLicense         string         `json:"pilot_license,omitempty"`
	AircraftRegistration string         `json:"aircraft_registration"`
	AircraftType         string         `json:"aircraft_type,omitempty"`
	MassMethod           string         `json:"mass_determination_method"`
	AltitudeMSL          float64        `json:"altitude_msl,omitempty"` // Launch site altitude in metres; 0 uses the configured default
	AlternativePlan      string         `json:"alternative_plan"`
	AlternativeCriteria  string         `json:"alternative_criteria"`
	Weather              Weather        `json:"weather"`
	Passengers           []Passenger    `json:"passengers"`
	ClothingLuggage      bool           `json:"clothing_luggage_included"`
	Fuel                 Fuel           `json:"fuel"`
	Declarations         Declarations   `json:"declarations"`
	Risk                 RiskAssessment `json:"risk"`
}

// DerivedMetrics is the performance projection of a plan and its aircraft.
// It is recomputed from the current plan on every read and never stored as mutable state.
type DerivedMetrics struct {
	LiftKg                 float64 `json:"lift_kg"`
	FuelWeightKg           float64 `json:"fuel_weight_kg"`
	TotalPassengerWeightKg float64 `json:"total_passenger_weight_kg"`
	ClothingAllowanceKg    float64 `json:"clothing_allowance_kg"`
	TrafficLoadKg          float64 `json:"traffic_load_kg"`
	AvailablePayloadKg     float64 `json:"available_payload_kg"`
	TakeOffMassKg          float64 `json:"take_off_mass_kg"`
	FuelReserveMinutes     int     `json:"fuel_reserve_minutes"`
	FuelReserveSufficient  bool    `json:"fuel_reserve_sufficient"`
}

// FlightPlanRecord is an accepted flight plan flattened for persistence and notification
type FlightPlanRecord struct {
	ID            string         `json:"id,omitempty"`
	Plan          FlightPlan     `json:"plan"`
	Metrics       DerivedMetrics `json:"metrics"`
	PilotWarnings []string       `json:"pilot_warnings,omitempty"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	EmailSentAt   *time.Time     `json:"email_sent_at,omitempty"`
}
