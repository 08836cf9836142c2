package models

// Aircraft represents a balloon in the operator's fleet.
// EmptyWeightKg covers envelope, basket, burner and cylinders as declared in the equipment fields.
// A MaxTakeOffMassKg of 0 disables the MTOM check.
type Aircraft struct {
	Registration     string  `json:"registration" yaml:"registration"`
	Model            string  `json:"model" yaml:"model"`
	SerialNumber     string  `json:"serial_number" yaml:"serial_number"`
	VolumeCubicFeet  float64 `json:"volume_cubic_feet" yaml:"volume_cubic_feet"`
	EmptyWeightKg    float64 `json:"empty_weight_kg" yaml:"empty_weight_kg"`
	MaxTakeOffMassKg float64 `json:"max_take_off_mass_kg,omitempty" yaml:"max_take_off_mass_kg"`
	Envelope         string  `json:"envelope,omitempty" yaml:"envelope"`
	Basket           string  `json:"basket,omitempty" yaml:"basket"`
	Burner           string  `json:"burner,omitempty" yaml:"burner"`
	Cylinders        string  `json:"cylinders,omitempty" yaml:"cylinders"`
}

// HasMTOM reports whether a maximum take-off mass check applies to the aircraft
func (a Aircraft) HasMTOM() bool {
	return a.MaxTakeOffMassKg > 0
}
