package model

import (
	"github.com/agrimesh/fieldops/internal/model/entities"
	"github.com/agrimesh/fieldops/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	Reading            = entities.Reading
	Command            = entities.Command
	CommandStatus      = entities.CommandStatus
	Params             = entities.Params
	Probe              = entities.Probe
	Rover              = entities.Rover
	Event              = messages.Event
	EventType          = messages.EventType
	CommandResultEvent = messages.CommandResultEvent
)

const (
	StatusPending   = entities.StatusPending
	StatusCompleted = entities.StatusCompleted
	StatusFailed    = entities.StatusFailed
	RoverIdle       = entities.RoverIdle
	RoverBusy       = entities.RoverBusy
)
