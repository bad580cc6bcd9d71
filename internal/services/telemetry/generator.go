package telemetry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/agrimesh/fieldops/internal/model"
)

// ====== Tunables ======
const (
	// perturbation half-widths around each probe baseline
	jitterNitrogen   = 5.0
	jitterPhosphorus = 3.0
	jitterPotassium  = 4.0
	jitterPH         = 0.3
	jitterHumidity   = 5.0
	jitterTemp       = 2.0

	phMin, phMax               = 4.0, 9.0
	moistureMin, moistureMax   = 30.0, 80.0
	fertilityMin, fertilityMax = 60.0, 95.0
)

// Source produces one reading per probe per tick. Any deterministic or
// stochastic implementation is acceptable to the producer loop.
type Source interface {
	Next(p model.Probe) (model.Reading, error)
}

// Generator derives readings from a per-probe baseline profile plus bounded
// random perturbation, clamped to each field's valid range. Timestamps are
// kept monotonically non-decreasing per probe.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	lastTick map[string]time.Time
}

// NewGenerator creates a generator. seed 0 derives one from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		lastTick: make(map[string]time.Time),
	}
}

var _ Source = (*Generator)(nil)

func (g *Generator) Next(p model.Probe) (model.Reading, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	if last, ok := g.lastTick[p.ID]; ok && now.Before(last) {
		now = last
	}
	g.lastTick[p.ID] = now

	b := p.Baseline
	return model.Reading{
		ProbeID:        p.ID,
		Timestamp:      now,
		Nitrogen:       clamp(b.Nitrogen+g.uniform(jitterNitrogen), 0, 100),
		Phosphorus:     clamp(b.Phosphorus+g.uniform(jitterPhosphorus), 0, 100),
		Potassium:      clamp(b.Potassium+g.uniform(jitterPotassium), 0, 100),
		PH:             clamp(b.PH+g.uniform(jitterPH), phMin, phMax),
		Humidity:       clamp(b.Humidity+g.uniform(jitterHumidity), 0, 100),
		Temperature:    b.Temperature + g.uniform(jitterTemp),
		SoilMoisture:   g.between(moistureMin, moistureMax),
		FertilityIndex: g.between(fertilityMin, fertilityMax),
	}, nil
}

// uniform returns a value in [-halfWidth, +halfWidth).
func (g *Generator) uniform(halfWidth float64) float64 {
	return (g.rng.Float64()*2 - 1) * halfWidth
}

func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
