package telemetry

import (
	"testing"
	"time"

	"github.com/agrimesh/fieldops/internal/model/entities"
)

func TestGeneratorBoundsAndClamping(t *testing.T) {
	gen := NewGenerator(1)
	probes := entities.DefaultProbes()

	for i := 0; i < 500; i++ {
		for _, p := range probes {
			r, err := gen.Next(p)
			if err != nil {
				t.Fatalf("Next(%s): %v", p.ID, err)
			}
			if r.ProbeID != p.ID {
				t.Fatalf("probe_id = %s, want %s", r.ProbeID, p.ID)
			}
			if r.PH < 4.0 || r.PH > 9.0 {
				t.Errorf("ph %v outside [4, 9]", r.PH)
			}
			for name, v := range map[string]float64{
				"nitrogen":      r.Nitrogen,
				"phosphorus":    r.Phosphorus,
				"potassium":     r.Potassium,
				"humidity":      r.Humidity,
				"soil_moisture": r.SoilMoisture,
			} {
				if v < 0 || v > 100 {
					t.Errorf("%s = %v outside [0, 100]", name, v)
				}
			}
			if r.FertilityIndex < 0 || r.FertilityIndex > 100 {
				t.Errorf("fertility_index = %v outside [0, 100]", r.FertilityIndex)
			}
		}
	}
}

func TestGeneratorTimestampsMonotonicPerProbe(t *testing.T) {
	gen := NewGenerator(42)
	p := entities.DefaultProbes()[0]

	var last time.Time
	for i := 0; i < 100; i++ {
		r, err := gen.Next(p)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if r.Timestamp.Before(last) {
			t.Fatalf("timestamp regressed: %v < %v", r.Timestamp, last)
		}
		last = r.Timestamp
	}
}

func TestGeneratorPerturbsAroundBaseline(t *testing.T) {
	gen := NewGenerator(7)
	p := entities.DefaultProbes()[0]

	r, err := gen.Next(p)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if diff := r.Nitrogen - p.Baseline.Nitrogen; diff < -jitterNitrogen || diff > jitterNitrogen {
		t.Errorf("nitrogen drifted %v from baseline, beyond ±%v", diff, jitterNitrogen)
	}
	if diff := r.Temperature - p.Baseline.Temperature; diff < -jitterTemp || diff > jitterTemp {
		t.Errorf("temperature drifted %v from baseline, beyond ±%v", diff, jitterTemp)
	}
}
