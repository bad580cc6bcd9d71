package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CommandStatus tracks a command through its pending → terminal lifecycle.
type CommandStatus string

const (
	StatusPending   CommandStatus = "pending"
	StatusCompleted CommandStatus = "completed"
	StatusFailed    CommandStatus = "failed"
)

// Terminal reports whether no further transitions are permitted.
func (s CommandStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Params is the caller-opaque parameter map of a command. Schema depends on
// the command type and is not validated at admission.
type Params map[string]any

func (p Params) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Params) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Params{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("params: cannot scan %T", src)
	}
}

// Command is a requested actuation targeting a zone. It is created on submit
// and mutated exclusively by the dispatch worker.
type Command struct {
	ID          uint          `json:"-" gorm:"primaryKey;autoIncrement"`
	CommandID   string        `json:"command_id" gorm:"uniqueIndex"`
	CommandType string        `json:"command_type"`
	Zone        string        `json:"zone"`
	Parameters  Params        `json:"parameters" gorm:"type:text"`
	Status      CommandStatus `json:"status" gorm:"index"`
	SubmittedAt time.Time     `json:"submitted_at" gorm:"index"`
	ExecutedAt  *time.Time    `json:"executed_at"`
	Result      *string       `json:"result"`
}
