package entities

import "time"

// RoverStatus indicates whether a rover is free to take a command.
type RoverStatus string

const (
	RoverIdle RoverStatus = "idle"
	RoverBusy RoverStatus = "busy"
)

// Rover is one simulated actuation unit. Rovers are configuration-like: the
// pool is fixed at startup and only status/battery/zone change at runtime.
type Rover struct {
	RoverID      string      `json:"rover_id" gorm:"primaryKey"`
	Name         string      `json:"name"`
	CommandType  string      `json:"command_type"` // command type this rover serves
	Status       RoverStatus `json:"status"`
	CurrentZone  string      `json:"current_zone"`
	BatteryLevel float64     `json:"battery_level"`
	LastSeen     time.Time   `json:"last_seen"`
}

// DefaultRovers returns the fixed pool: one irrigation unit, one fertilizer
// unit. Unknown command types fall back to the first idle rover.
func DefaultRovers() []Rover {
	return []Rover{
		{RoverID: "rover_1", Name: "Irrigation Rover", CommandType: "irrigation", Status: RoverIdle, BatteryLevel: 100},
		{RoverID: "rover_2", Name: "Fertilizer Rover", CommandType: "fertilizer", Status: RoverIdle, BatteryLevel: 95},
	}
}
