package compliance

import (
	"testing"

	"balloon_ofp/internal/models"
	"balloon_ofp/internal/performance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAircraft = models.Aircraft{
	Registration:    "CS-UMA",
	Model:           "Ultramagic N-425",
	VolumeCubicFeet: 425000,
	EmptyWeightKg:   485,
}

func allDeclarations() models.Declarations {
	return models.Declarations{
		AlcoholDrugs:               true,
		Rest:                       true,
		PreFlightInspection:        true,
		NoSmoking:                  true,
		NoWeapons:                  true,
		NOTAMsChecked:              true,
		MeteoMinimaVFR:             true,
		AFMLimitations:             true,
		TakeOffConditionsOK:        true,
		LandingConditionsOK:        true,
		PassengerBriefingCompleted: true,
		DangerousGoodsBriefing:     true,
	}
}

func validPlan() models.FlightPlan {
	return models.FlightPlan{
		PreparedBy:           "Ops desk",
		FlightDate:           "2026-10-20",
		PilotName:            "Manel Rodriguez",
		AircraftRegistration: "CS-UMA",
		MassMethod:           models.MassMethodDeclared,
		AlternativePlan:      "Delay launch by one hour",
		AlternativeCriteria:  "Surface wind above 10 kt",
		Weather:              models.Weather{Source: "Open-Meteo", TemperatureCelsius: 15},
		Passengers: []models.Passenger{
			{Name: "John Doe", WeightKg: 75},
			{Name: "Jane Smith", WeightKg: 65},
		},
		Fuel: models.Fuel{
			TotalLiters:                160,
			EstimatedConsumptionLiters: 80,
			ReserveCriterion:           models.Reserve30Min,
		},
		Declarations: allDeclarations(),
		Risk:         models.RiskAssessment{ATSFlightPlanFile: models.ATSFPLNotRequired},
	}
}

func validate(plan models.FlightPlan, aircraft *models.Aircraft) Result {
	calc := performance.NewCalculator(performance.DefaultParams())
	return Validate(plan, calc.Compute(plan, aircraft), aircraft)
}

func fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func gates(failures []GateFailure) []string {
	out := make([]string, 0, len(failures))
	for _, g := range failures {
		out = append(out, g.Gate)
	}
	return out
}

func TestValidate_Accepted(t *testing.T) {
	ac := testAircraft
	res := validate(validPlan(), &ac)
	assert.True(t, res.Accepted())
	assert.Empty(t, res.Structural)
	assert.Empty(t, res.Gates)
}

func TestValidate_PassengerBounds(t *testing.T) {
	ac := testAircraft

	tests := []struct {
		name       string
		passengers []models.Passenger
		wantFields []string
	}{
		{"no passengers", nil, []string{"passengers"}},
		{"exactly 200 kg", []models.Passenger{{Name: "Heavy", WeightKg: 200}}, []string{}},
		{"201 kg", []models.Passenger{{Name: "Heavier", WeightKg: 201}}, []string{"passengers[0].weight_kg"}},
		{"exactly 1 kg", []models.Passenger{{Name: "Light", WeightKg: 1}}, []string{}},
		{"zero weight", []models.Passenger{{Name: "Ghost", WeightKg: 0}}, []string{"passengers[0].weight_kg"}},
		{"missing name", []models.Passenger{{Name: "A", WeightKg: 70}, {Name: "  ", WeightKg: 70}}, []string{"passengers[1].name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			plan.Passengers = tt.passengers
			res := validate(plan, &ac)
			assert.Equal(t, tt.wantFields, fields(res.Structural))
		})
	}
}

func TestValidate_SinglePassenger200kgAccepted(t *testing.T) {
	ac := testAircraft
	plan := validPlan()
	plan.Passengers = []models.Passenger{{Name: "Heavy", WeightKg: 200}}

	res := validate(plan, &ac)
	assert.True(t, res.Accepted())
}

func TestValidate_EveryFalseDeclarationReported(t *testing.T) {
	ac := testAircraft
	plan := validPlan()
	plan.Declarations = models.Declarations{}

	res := validate(plan, &ac)
	require.Len(t, res.Structural, 12)
	assert.Equal(t, "declarations.notams_checked", res.Structural[0].Field)
	assert.Equal(t, "declarations.dangerous_goods_briefing", res.Structural[11].Field)
	assert.True(t, res.GatesPassed(), "declarations do not affect performance gates")
}

func TestValidate_SingleDeclaration(t *testing.T) {
	ac := testAircraft
	plan := validPlan()
	plan.Declarations.NoWeapons = false

	res := validate(plan, &ac)
	require.Len(t, res.Structural, 1)
	assert.Equal(t, FieldError{Field: "declarations.no_weapons", Message: "No weapons must be agreed"}, res.Structural[0])
}

func TestValidate_RequiredStrings(t *testing.T) {
	ac := testAircraft
	plan := validPlan()
	plan.PreparedBy = ""
	plan.PilotName = " "
	plan.FlightDate = ""
	plan.AlternativePlan = ""
	plan.AlternativeCriteria = ""
	plan.Weather.Source = ""
	plan.MassMethod = "weighed"

	res := validate(plan, &ac)
	assert.Equal(t, []string{
		"prepared_by",
		"mass_determination_method",
		"flight_date",
		"pilot_name",
		"weather.source",
		"alternative_plan",
		"alternative_criteria",
	}, fields(res.Structural))
}

func TestValidate_NumericBounds(t *testing.T) {
	ac := testAircraft

	tests := []struct {
		name   string
		mutate func(*models.FlightPlan)
		want   []string
	}{
		{"temperature -20", func(p *models.FlightPlan) { p.Weather.TemperatureCelsius = -20 }, []string{}},
		{"temperature 50", func(p *models.FlightPlan) { p.Weather.TemperatureCelsius = 50 }, []string{}},
		{"temperature 50.1", func(p *models.FlightPlan) { p.Weather.TemperatureCelsius = 50.1 }, []string{"weather.temperature_celsius"}},
		{"temperature -21", func(p *models.FlightPlan) { p.Weather.TemperatureCelsius = -21 }, []string{"weather.temperature_celsius"}},
		{"no fuel", func(p *models.FlightPlan) { p.Fuel.TotalLiters = 0 }, []string{"fuel.total_liters"}},
		{"no consumption", func(p *models.FlightPlan) { p.Fuel.EstimatedConsumptionLiters = 0.5 }, []string{"fuel.estimated_consumption_liters"}},
		{"bad criterion", func(p *models.FlightPlan) { p.Fuel.ReserveCriterion = "45min" }, []string{"fuel.reserve_criterion"}},
		{"bad ats status", func(p *models.FlightPlan) { p.Risk.ATSFlightPlanFile = "" }, []string{"risk.ats_fpl_status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			tt.mutate(&plan)
			res := validate(plan, &ac)
			assert.Equal(t, tt.want, fields(res.Structural))
		})
	}
}

func TestCheckGates_TrafficLoad(t *testing.T) {
	small := models.Aircraft{Registration: "CS-SML", VolumeCubicFeet: 40000, EmptyWeightKg: 300}
	plan := validPlan()

	res := validate(plan, &small)
	require.Equal(t, []string{GateTrafficLoad}, gates(res.Gates))
	g := res.Gates[0]
	assert.Equal(t, 140.0, g.Value)
	assert.Equal(t, 0.0, g.Limit)
	assert.Equal(t, -140.0, g.Margin)
	assert.True(t, res.StructurallyValid(), "gate failures are not structural")
}

func TestCheckGates_ClothingTipsOverLimit(t *testing.T) {
	// 3352.85 lift - 485 empty - 20.4 fuel leaves 2847.45 kg
	ac := testAircraft
	plan := validPlan()
	plan.Fuel.TotalLiters = 40
	plan.Fuel.EstimatedConsumptionLiters = 1
	plan.Passengers = nil
	for i := 0; i < 14; i++ {
		plan.Passengers = append(plan.Passengers, models.Passenger{Name: "P", WeightKg: 200})
	}
	plan.Passengers = append(plan.Passengers, models.Passenger{Name: "Q", WeightKg: 4})

	res := validate(plan, &ac)
	assert.True(t, res.GatesPassed(), "2804 kg fits")

	plan.ClothingLuggage = true
	res = validate(plan, &ac)
	require.Equal(t, []string{GateTrafficLoad}, gates(res.Gates))
	assert.InDelta(t, -1.55, res.Gates[0].Margin, 1e-9)
}

func TestCheckGates_MTOM(t *testing.T) {
	ac := testAircraft
	ac.MaxTakeOffMassKg = 600

	plan := validPlan()
	res := validate(plan, &ac)
	require.Equal(t, []string{GateMTOM}, gates(res.Gates))
	// 485 + 81.6 + 140
	assert.InDelta(t, 706.6, res.Gates[0].Value, 1e-9)
	assert.InDelta(t, -106.6, res.Gates[0].Margin, 1e-9)

	ac.MaxTakeOffMassKg = 706.6
	res = validate(plan, &ac)
	assert.True(t, res.GatesPassed(), "TOM equal to MTOM is allowed")

	ac.MaxTakeOffMassKg = 0
	res = validate(plan, &ac)
	assert.True(t, res.GatesPassed(), "no MTOM declared")
}

func TestCheckGates_FuelReserve(t *testing.T) {
	ac := testAircraft

	tests := []struct {
		name      string
		total     float64
		estimated float64
		criterion models.ReserveCriterion
		wantGate  bool
	}{
		{"30 min exactly", 100, 80, models.Reserve30Min, false},
		{"below 30", 100, 81, models.Reserve30Min, true},
		{"15 min criterion", 100, 88, models.Reserve15Min, false},
		{"deficit", 20, 40, models.Reserve15Min, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			plan.Fuel.TotalLiters = tt.total
			plan.Fuel.EstimatedConsumptionLiters = tt.estimated
			plan.Fuel.ReserveCriterion = tt.criterion

			res := validate(plan, &ac)
			if tt.wantGate {
				assert.Equal(t, []string{GateFuelReserve}, gates(res.Gates))
			} else {
				assert.Empty(t, res.Gates)
			}
		})
	}
}

func TestCheckGates_FuelDeficitMargin(t *testing.T) {
	ac := testAircraft
	plan := validPlan()
	plan.Fuel.TotalLiters = 20
	plan.Fuel.EstimatedConsumptionLiters = 40

	res := validate(plan, &ac)
	require.Len(t, res.Gates, 1)
	assert.Equal(t, -30.0, res.Gates[0].Value)
	assert.Equal(t, 30.0, res.Gates[0].Limit)
	assert.Equal(t, -60.0, res.Gates[0].Margin)
}

func TestCheckGates_NoAircraft(t *testing.T) {
	plan := validPlan()
	res := validate(plan, nil)

	assert.True(t, res.StructurallyValid())
	assert.Equal(t, []string{GateTrafficLoad}, gates(res.Gates))
}

func TestCheckGates_AllFailTogether(t *testing.T) {
	ac := models.Aircraft{Registration: "CS-SML", VolumeCubicFeet: 40000, EmptyWeightKg: 300, MaxTakeOffMassKg: 350}
	plan := validPlan()
	plan.Fuel.EstimatedConsumptionLiters = 150

	res := validate(plan, &ac)
	assert.Equal(t, []string{GateTrafficLoad, GateMTOM, GateFuelReserve}, gates(res.Gates))
}
