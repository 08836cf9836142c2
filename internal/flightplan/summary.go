package flightplan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"balloon_ofp/internal/models"
)

const notAvailable = "N/A"

// RenderSummary formats a record as the plain-text operational flight plan sent to operations
func RenderSummary(rec *models.FlightPlanRecord) string {
	p := rec.Plan
	m := rec.Metrics

	var b strings.Builder
	b.WriteString("OPERATIONAL FLIGHT PLAN\n")
	b.WriteString("========================\n")

	section(&b, "AIRCRAFT INFORMATION")
	line(&b, "Type", orNA(strings.ToUpper(p.AircraftType)))
	line(&b, "Registration", orNA(p.AircraftRegistration))
	line(&b, "Mass Determination", orNA(p.MassMethod))

	section(&b, "FLIGHT DETAILS")
	line(&b, "Date", p.FlightDate)
	line(&b, "Prepared By", p.PreparedBy)
	line(&b, "Pilot", p.PilotName)
	line(&b, "License", orNA(p.PilotLicense))
	line(&b, "Alternative Plan", p.AlternativePlan)
	line(&b, "Alternative Criteria", p.AlternativeCriteria)
	line(&b, "ATS Flight Plan", orNA(string(p.Risk.ATSFlightPlanFile)))
	for _, w := range rec.PilotWarnings {
		line(&b, "Warning", w)
	}

	section(&b, "DECLARATIONS")
	for _, d := range declarationChecklist(p.Declarations) {
		fmt.Fprintf(&b, "[%s] %s\n", mark(d.ok), d.label)
	}

	section(&b, "WEATHER CONDITIONS")
	line(&b, "Source", p.Weather.Source)
	line(&b, "Temperature", formatNumber(p.Weather.TemperatureCelsius)+"°C")
	line(&b, "QNH", optional(p.Weather.QNHHPa)+" hPa")
	line(&b, "Surface Wind", fmt.Sprintf("%s km/h @ %s°", optional(p.Weather.SurfaceWindSpeedKmh), optional(p.Weather.SurfaceWindDirDeg)))
	for _, w := range p.Weather.WindsAloft {
		line(&b, fmt.Sprintf("Wind @ %sm", formatNumber(w.AltitudeM)), fmt.Sprintf("%s km/h @ %s°", formatNumber(w.SpeedKmh), formatNumber(w.DirectionDeg)))
	}

	section(&b, "PERFORMANCE CALCULATIONS")
	line(&b, "Calculated Lift", fmt.Sprintf("%.2f kg", m.LiftKg))
	line(&b, "Available Payload", fmt.Sprintf("%.2f kg", m.AvailablePayloadKg))
	line(&b, "Traffic Load", fmt.Sprintf("%.2f kg", m.TrafficLoadKg))
	line(&b, "Take-off Mass", fmt.Sprintf("%.2f kg", m.TakeOffMassKg))

	section(&b, "PASSENGER MANIFEST")
	for i, pax := range p.Passengers {
		fmt.Fprintf(&b, "%d. %s - %s kg", i+1, pax.Name, formatNumber(pax.WeightKg))
		if pax.HasSpecialNeeds {
			b.WriteString(" (special needs)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	line(&b, "Total Passenger Weight", formatNumber(m.TotalPassengerWeightKg)+" kg")
	line(&b, "Clothing/Luggage Weight Included", yesNo(p.ClothingLuggage))

	section(&b, "FUEL MANAGEMENT")
	line(&b, "Total Fuel", formatNumber(p.Fuel.TotalLiters)+" L")
	line(&b, "Fuel Mass", fmt.Sprintf("%.2f kg", m.FuelWeightKg))
	line(&b, "Estimated Consumption", formatNumber(p.Fuel.EstimatedConsumptionLiters)+" L")
	line(&b, "Reserve", fmt.Sprintf("%d minutes", m.FuelReserveMinutes))
	line(&b, "Reserve Criterion", orNA(string(p.Fuel.ReserveCriterion)))
	if p.Fuel.ReserveJustification != "" {
		line(&b, "Reserve Justification", p.Fuel.ReserveJustification)
	}
	line(&b, "Reserve Sufficient", yesNo(m.FuelReserveSufficient))

	b.WriteString("\n========================\n")
	generated := rec.CreatedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	fmt.Fprintf(&b, "Generated: %s\n", generated.UTC().Format(time.RFC3339))

	return b.String()
}

// Subject returns the notification subject line for a record
func Subject(rec *models.FlightPlanRecord) string {
	return fmt.Sprintf("Flight Plan - %s - %s", rec.Plan.PilotName, rec.Plan.FlightDate)
}

type checklistItem struct {
	label string
	ok    bool
}

func declarationChecklist(d models.Declarations) []checklistItem {
	return []checklistItem{
		{"NOTAMs checked", d.NOTAMsChecked},
		{"Meteo above VFR minima", d.MeteoMinimaVFR},
		{"Within AFM limitations", d.AFMLimitations},
		{"Take-off conditions OK", d.TakeOffConditionsOK},
		{"Landing conditions OK", d.LandingConditionsOK},
		{"No alcohol or drugs", d.AlcoholDrugs},
		{"Adequate rest", d.Rest},
		{"Pre-flight inspection completed", d.PreFlightInspection},
		{"No smoking", d.NoSmoking},
		{"No weapons", d.NoWeapons},
		{"Passenger briefing completed", d.PassengerBriefingCompleted},
		{"Dangerous goods briefing", d.DangerousGoodsBriefing},
	}
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func optional(v float64) string {
	if v == 0 {
		return notAvailable
	}
	return formatNumber(v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mark(ok bool) string {
	if ok {
		return "x"
	}
	return " "
}

func yesNo(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}
