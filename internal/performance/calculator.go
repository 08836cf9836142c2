// Package performance computes lift, payload, take-off mass and fuel reserve for a balloon flight.
//
// The formulas are fixed linear approximations chosen so that every number can be
// reproduced on paper. Each formula rounds its result to two decimals by scaling
// by 100 and rounding the scaled value half away from zero, so composed
// calculations give identical results everywhere.
package performance

import (
	"math"

	"github.com/shopspring/decimal"

	"balloon_ofp/internal/models"
)

// Params holds the calibration constants of the performance model
type Params struct {
	HotAirTempC                     float64 // Typical envelope temperature
	BaseLiftPer1000CuFtKg           float64 // Lift per 1000 ft³ at the reference differential, sea level
	ReferenceDifferentialC          float64 // Temperature differential the base lift is quoted at
	DefaultAltitudeM                float64 // Launch site altitude used when the plan gives none
	PropaneDensityKgPerL            float64
	ConsumptionRateLPerHour         float64
	ClothingAllowanceKgPerPassenger float64
}

// DefaultParams returns the operator's standard calibration
func DefaultParams() Params {
	return Params{
		HotAirTempC:                     100,
		BaseLiftPer1000CuFtKg:           7.5,
		ReferenceDifferentialC:          80,
		DefaultAltitudeM:                1000,
		PropaneDensityKgPerL:            0.51,
		ConsumptionRateLPerHour:         40,
		ClothingAllowanceKgPerPassenger: 3,
	}
}

// Calculator evaluates the performance model. It holds no state besides its parameters
// and is safe for concurrent use.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator. Zero-valued parameters take their default.
func NewCalculator(p Params) *Calculator {
	def := DefaultParams()
	if p.HotAirTempC == 0 {
		p.HotAirTempC = def.HotAirTempC
	}
	if p.BaseLiftPer1000CuFtKg == 0 {
		p.BaseLiftPer1000CuFtKg = def.BaseLiftPer1000CuFtKg
	}
	if p.ReferenceDifferentialC == 0 {
		p.ReferenceDifferentialC = def.ReferenceDifferentialC
	}
	if p.DefaultAltitudeM == 0 {
		p.DefaultAltitudeM = def.DefaultAltitudeM
	}
	if p.PropaneDensityKgPerL == 0 {
		p.PropaneDensityKgPerL = def.PropaneDensityKgPerL
	}
	if p.ConsumptionRateLPerHour <= 0 {
		p.ConsumptionRateLPerHour = def.ConsumptionRateLPerHour
	}
	if p.ClothingAllowanceKgPerPassenger == 0 {
		p.ClothingAllowanceKgPerPassenger = def.ClothingAllowanceKgPerPassenger
	}
	return &Calculator{params: p}
}

// Params returns the calibration in use
func (c *Calculator) Params() Params {
	return c.params
}

// Lift returns the lift capacity in kg of an envelope of the given volume.
// The result is negative when the ambient temperature exceeds the hot-air temperature;
// callers treat that as no usable lift.
func (c *Calculator) Lift(volumeCubicFeet, ambientTempC, altitudeM float64) float64 {
	tempDifferential := c.params.HotAirTempC - ambientTempC
	altitudeFactor := 1 - (altitudeM/10000)*0.1

	lift := (volumeCubicFeet / 1000) * c.params.BaseLiftPer1000CuFtKg *
		(tempDifferential / c.params.ReferenceDifferentialC) * altitudeFactor

	return Round2(lift)
}

// AvailablePayload returns the lift left for traffic load. Never negative.
func (c *Calculator) AvailablePayload(totalLiftKg, emptyWeightKg, fuelWeightKg float64) float64 {
	return math.Max(0, Round2(totalLiftKg-emptyWeightKg-fuelWeightKg))
}

// FuelLitersToKg converts a propane volume to mass
func (c *Calculator) FuelLitersToKg(liters float64) float64 {
	return Round2(liters * c.params.PropaneDensityKgPerL)
}

// FuelReserve returns the flight time in minutes left after the estimated consumption.
// A negative result is a fuel deficit. A non-positive rate uses the configured rate.
// Half minutes round up, so a 1.5 minute deficit reads as -1.
func (c *Calculator) FuelReserve(totalFuelLiters, estimatedConsumptionLiters, rateLPerHour float64) int {
	if rateLPerHour <= 0 {
		rateLPerHour = c.params.ConsumptionRateLPerHour
	}
	reserveFuel := totalFuelLiters - estimatedConsumptionLiters
	minutes := reserveFuel / rateLPerHour * 60
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0
	}
	return int(decimal.NewFromFloat(minutes).Add(half).Floor().IntPart())
}

// TakeOffMass returns empty mass + fuel mass + traffic load
func (c *Calculator) TakeOffMass(emptyMassKg, fuelMassKg, trafficLoadKg float64) float64 {
	return Round2(emptyMassKg + fuelMassKg + trafficLoadKg)
}

// ClothingAllowance returns the clothing and luggage allowance for a passenger count
func (c *Calculator) ClothingAllowance(passengers int, included bool) float64 {
	if !included {
		return 0
	}
	return Round2(float64(passengers) * c.params.ClothingAllowanceKgPerPassenger)
}

// TrafficLoad returns the passenger weight plus the clothing allowance if included
func (c *Calculator) TrafficLoad(passengers []models.Passenger, clothingIncluded bool) float64 {
	return Round2(TotalPassengerWeight(passengers) + c.ClothingAllowance(len(passengers), clothingIncluded))
}

// Compute projects a plan onto its aircraft. A nil aircraft means none is selected:
// lift and payload are zero and take-off mass carries no empty weight.
func (c *Calculator) Compute(plan models.FlightPlan, aircraft *models.Aircraft) models.DerivedMetrics {
	m := models.DerivedMetrics{
		FuelWeightKg:           c.FuelLitersToKg(plan.Fuel.TotalLiters),
		TotalPassengerWeightKg: TotalPassengerWeight(plan.Passengers),
		ClothingAllowanceKg:    c.ClothingAllowance(len(plan.Passengers), plan.ClothingLuggage),
		FuelReserveMinutes:     c.FuelReserve(plan.Fuel.TotalLiters, plan.Fuel.EstimatedConsumptionLiters, 0),
	}
	m.TrafficLoadKg = Round2(m.TotalPassengerWeightKg + m.ClothingAllowanceKg)
	m.FuelReserveSufficient = IsFuelReserveSufficient(m.FuelReserveMinutes, plan.Fuel.ReserveCriterion)

	if aircraft == nil {
		m.TakeOffMassKg = c.TakeOffMass(0, m.FuelWeightKg, m.TrafficLoadKg)
		return m
	}

	altitude := plan.AltitudeMSL
	if altitude == 0 {
		altitude = c.params.DefaultAltitudeM
	}

	m.LiftKg = c.Lift(aircraft.VolumeCubicFeet, plan.Weather.TemperatureCelsius, altitude)
	m.AvailablePayloadKg = c.AvailablePayload(m.LiftKg, aircraft.EmptyWeightKg, m.FuelWeightKg)
	m.TakeOffMassKg = c.TakeOffMass(aircraft.EmptyWeightKg, m.FuelWeightKg, m.TrafficLoadKg)

	return m
}

// ReserveThreshold returns the minimum reserve in minutes for a criterion.
// Anything other than 15min is held to the standard 30 minutes.
func ReserveThreshold(criterion models.ReserveCriterion) int {
	if criterion == models.Reserve15Min {
		return 15
	}
	return 30
}

// IsFuelReserveSufficient reports whether the reserve meets the criterion
func IsFuelReserveSufficient(reserveMinutes int, criterion models.ReserveCriterion) bool {
	return reserveMinutes >= ReserveThreshold(criterion)
}

// TotalPassengerWeight sums the manifest weights
func TotalPassengerWeight(passengers []models.Passenger) float64 {
	total := 0.0
	for _, p := range passengers {
		total += p.WeightKg
	}
	return Round2(total)
}

var half = decimal.NewFromFloat(0.5)

// Round2 rounds to two decimals. The value is scaled by 100 first and the
// scaled float is rounded half away from zero, so 1.005 (stored just below)
// gives 1.00.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v * 100).Round(0).Shift(-2).InexactFloat64()
}
