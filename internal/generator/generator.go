// Package generator synthesises joint sine-test logs.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/sinecheck/internal/model"
)

// Profile describes the commanded motion and the simulated loop response.
type Profile struct {
	Joint     string
	Amplitude float64 // radians
	Period    float64 // seconds
	Total     float64 // seconds
	Ramp      float64 // seconds spent ramping in and out
	Rate      float64 // samples per second
	Jitter    float64 // fraction of the nominal interval, 0-1
	RefLag    int     // samples between cmd and ref
	PosLag    int     // samples between ref and pos
	Quantum   float64 // pos resolution in radians, 0 disables
}

// DefaultProfile matches the bench sine test: 5 degrees at 1 Hz for 8 s with
// 2 s ramps, sampled at 200 Hz.
func DefaultProfile() Profile {
	return Profile{
		Joint:     "RSP",
		Amplitude: 5 * math.Pi / 180,
		Period:    1,
		Total:     8,
		Ramp:      2,
		Rate:      200,
		RefLag:    2,
		PosLag:    6,
		Quantum:   0.0005,
	}
}

// Validate reports the first invalid field.
func (p Profile) Validate() error {
	switch {
	case p.Period <= 0:
		return fmt.Errorf("period must be > 0")
	case p.Total <= 0:
		return fmt.Errorf("total duration must be > 0")
	case p.Ramp < 0 || 2*p.Ramp > p.Total:
		return fmt.Errorf("ramp must be between 0 and half the total duration")
	case p.Rate <= 0:
		return fmt.Errorf("rate must be > 0")
	case p.Jitter < 0 || p.Jitter >= 1:
		return fmt.Errorf("jitter must be in [0, 1)")
	case p.RefLag < 0 || p.PosLag < 0:
		return fmt.Errorf("lags must be >= 0")
	case p.Quantum < 0:
		return fmt.Errorf("quantum must be >= 0")
	}
	return nil
}

// Generator produces randomized sine-test logs.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate samples the profile. ref trails cmd by RefLag samples and pos
// trails ref by PosLag samples; pos is rounded to Quantum, which repeats
// values wherever the motion is slower than one quantum per sample.
func (g *Generator) Generate(p Profile) (model.Log, error) {
	if err := p.Validate(); err != nil {
		return model.Log{}, err
	}
	dt := 1 / p.Rate
	n := int(p.Total*p.Rate) + 1
	log := model.Log{
		Joint: p.Joint,
		Time:  make([]float64, n),
		Cmd:   make([]float64, n),
		Ref:   make([]float64, n),
		Pos:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		if i > 0 && p.Jitter > 0 {
			t += (g.rnd.Float64() - 0.5) * p.Jitter * dt
		}
		log.Time[i] = t
		log.Cmd[i] = math.Sin(t*2*math.Pi/p.Period) * p.Amplitude * envelope(t, p.Total, p.Ramp)
	}
	for i := 0; i < n; i++ {
		log.Ref[i] = lagged(log.Cmd, i, p.RefLag)
		log.Pos[i] = quantize(lagged(log.Ref, i, p.PosLag), p.Quantum)
	}
	return log, nil
}

// envelope ramps 0 -> 1 -> 0 through a cubic smoothstep.
func envelope(t, total, ramp float64) float64 {
	u := 1.0
	switch {
	case ramp <= 0:
		return 1
	case t < ramp:
		u = t / ramp
	case t > total-ramp:
		u = (total - t) / ramp
	}
	u = math.Max(0, math.Min(1, u))
	return 3*u*u - 2*u*u*u
}

func lagged(values []float64, i, lag int) float64 {
	if i-lag < 0 {
		return values[0]
	}
	return values[i-lag]
}

func quantize(v, quantum float64) float64 {
	if quantum <= 0 {
		return v
	}
	return math.Round(v/quantum) * quantum
}
