package entities

import "time"

// Reading is one multi-field soil/environment sample from a probe.
// Readings are immutable once stored.
type Reading struct {
	ID             uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	ProbeID        string    `json:"probe_id" gorm:"index:idx_probe_ts"`
	Timestamp      time.Time `json:"timestamp" gorm:"index:idx_probe_ts"`
	Nitrogen       float64   `json:"nitrogen"`
	Phosphorus     float64   `json:"phosphorus"`
	Potassium      float64   `json:"potassium"`
	PH             float64   `json:"ph"`
	Humidity       float64   `json:"humidity"`
	Temperature    float64   `json:"temperature"`
	SoilMoisture   float64   `json:"soil_moisture"`
	FertilityIndex float64   `json:"fertility_index"`
}
