package flightplan

import (
	"regexp"
	"strconv"
	"strings"

	"balloon_ofp/internal/models"
)

var (
	passengerSectionRe = regexp.MustCompile(`(?i)Passengers?:\s*([\s\S]*?)(?:\n\s*\n|$)`)
	passengerLineRe    = regexp.MustCompile(`(?i)^[-*]\s*([^,]+),\s*(\d+)\s*kg(?:,\s*(.+))?`)
)

// ParsePassengers extracts passengers from free text such as a booking description.
// It reads the block following a "Passengers:" heading up to the first blank line,
// one "- Name, 75kg, +34 600 123 456" entry per line. Lines that do not match are skipped.
func ParsePassengers(text string) []models.Passenger {
	passengers := []models.Passenger{}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	m := passengerSectionRe.FindStringSubmatch(text)
	if m == nil {
		return passengers
	}

	for _, line := range strings.Split(m[1], "\n") {
		parts := passengerLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if parts == nil {
			continue
		}
		weight, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		passengers = append(passengers, models.Passenger{
			Name:     strings.TrimSpace(parts[1]),
			WeightKg: float64(weight),
			Phone:    strings.TrimSpace(parts[3]),
		})
	}

	return passengers
}
