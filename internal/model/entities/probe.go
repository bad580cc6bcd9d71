package entities

// Probe is a fixed field sensor unit. The registry is static for the run;
// Baseline holds the per-probe profile the telemetry generator perturbs.
type Probe struct {
	ID       string   `json:"id"`
	Zone     string   `json:"zone"`
	Baseline Baseline `json:"baseline"`
}

// Baseline is the resting value of each generated field for one probe.
type Baseline struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	PH          float64 `json:"ph"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
}

// DefaultProbes mirrors the deployed field layout.
func DefaultProbes() []Probe {
	return []Probe{
		{ID: "Probe_1", Zone: "Z1", Baseline: Baseline{Nitrogen: 45, Phosphorus: 30, Potassium: 35, PH: 6.5, Humidity: 65, Temperature: 24}},
		{ID: "Probe_2", Zone: "Z2", Baseline: Baseline{Nitrogen: 40, Phosphorus: 25, Potassium: 30, PH: 6.8, Humidity: 70, Temperature: 23}},
		{ID: "Probe_3", Zone: "Z3", Baseline: Baseline{Nitrogen: 50, Phosphorus: 35, Potassium: 40, PH: 6.3, Humidity: 60, Temperature: 25}},
		{ID: "Probe_4", Zone: "Z4", Baseline: Baseline{Nitrogen: 35, Phosphorus: 20, Potassium: 25, PH: 7.0, Humidity: 75, Temperature: 22}},
	}
}
