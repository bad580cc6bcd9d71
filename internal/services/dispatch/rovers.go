package dispatch

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/store"
)

const (
	batteryFloor     = 5.0 // below this a rover refuses to run
	batteryDrainPct  = 0.5 // per executed command
	defaultMinDevice = 5 * time.Second
	defaultMaxDevice = 15 * time.Second
)

// Actuator executes one claimed command against a physical (or simulated)
// device and returns a human-readable outcome.
type Actuator interface {
	Execute(ctx context.Context, cmd model.Command) (result string, roverID string, err error)
}

// RoverPool is the fixed set of simulated rovers. Each command runs on the
// rover serving its command type, falling back to any idle rover for
// unrecognized types (the queue stays generic: unknown types still reach a
// terminal state).
type RoverPool struct {
	store *store.Store

	mu     sync.Mutex
	rovers map[string]*model.Rover
	rng    *rand.Rand

	// simulated device-response time bounds
	minExec time.Duration
	maxExec time.Duration
}

var _ Actuator = (*RoverPool)(nil)

func NewRoverPool(st *store.Store, rovers []model.Rover, minExec, maxExec time.Duration) *RoverPool {
	if minExec <= 0 {
		minExec = defaultMinDevice
	}
	if maxExec < minExec {
		maxExec = minExec
	}
	p := &RoverPool{
		store:   st,
		rovers:  make(map[string]*model.Rover, len(rovers)),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		minExec: minExec,
		maxExec: maxExec,
	}
	for i := range rovers {
		r := rovers[i]
		p.rovers[r.RoverID] = &r
		if err := st.UpsertRover(r); err != nil {
			log.Printf("rovers: seed %s: %v", r.RoverID, err)
		}
	}
	return p
}

// Execute runs cmd on a rover for a simulated device-response time. The
// rover is busy for the duration and idle again afterwards; battery drains
// per run. A depleted or missing rover is an execution fault.
func (p *RoverPool) Execute(_ context.Context, cmd model.Command) (string, string, error) {
	rover, err := p.acquire(cmd)
	if err != nil {
		return "", "", err
	}
	defer p.release(rover)

	time.Sleep(p.execTime(cmd))

	return fmt.Sprintf("Successfully executed %s in %s (%s)", cmd.CommandType, cmd.Zone, rover.Name), rover.RoverID, nil
}

func (p *RoverPool) acquire(cmd model.Command) (*model.Rover, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rover := p.pick(cmd.CommandType)
	if rover == nil {
		return nil, fmt.Errorf("no idle rover for command type %q", cmd.CommandType)
	}
	if rover.BatteryLevel < batteryFloor {
		return nil, fmt.Errorf("rover %s battery depleted (%.1f%%)", rover.RoverID, rover.BatteryLevel)
	}

	rover.Status = model.RoverBusy
	rover.CurrentZone = cmd.Zone
	rover.LastSeen = time.Now().UTC()
	p.persist(rover)
	return rover, nil
}

func (p *RoverPool) release(rover *model.Rover) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rover.Status = model.RoverIdle
	rover.BatteryLevel -= batteryDrainPct
	if rover.BatteryLevel < 0 {
		rover.BatteryLevel = 0
	}
	rover.LastSeen = time.Now().UTC()
	p.persist(rover)
}

// pick prefers the rover dedicated to the command type, then any idle one.
func (p *RoverPool) pick(commandType string) *model.Rover {
	for _, r := range p.rovers {
		if r.CommandType == commandType && r.Status == model.RoverIdle {
			return r
		}
	}
	for _, r := range p.rovers {
		if r.Status == model.RoverIdle {
			return r
		}
	}
	return nil
}

func (p *RoverPool) execTime(cmd model.Command) time.Duration {
	// an explicit numeric "duration" parameter scales the simulated run,
	// capped at the device-response maximum
	if v, ok := cmd.Parameters["duration"]; ok {
		if f, ok := v.(float64); ok && f > 0 {
			d := time.Duration(f * float64(p.minExec))
			if d > p.maxExec {
				d = p.maxExec
			}
			return d
		}
	}
	span := p.maxExec - p.minExec
	if span <= 0 {
		return p.minExec
	}
	return p.minExec + time.Duration(p.rng.Int63n(int64(span)))
}

func (p *RoverPool) persist(r *model.Rover) {
	if err := p.store.UpsertRover(*r); err != nil {
		log.Printf("rovers: persist %s: %v", r.RoverID, err)
	}
}
