package geospatial

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// poleEpsilon is the cos(latitude) below which no longitude offset is applied.
const poleEpsilon = 1e-9

// RandSource yields floats uniformly distributed in [0, 1).
// Implementations shared between goroutines must be safe for concurrent use.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

// Float64 uses the runtime-seeded top-level generator, which is goroutine safe.
func (globalRand) Float64() float64 { return rand.Float64() }

// LockedRand wraps a seeded generator with a mutex so a reproducible source
// can be shared by concurrent writers.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand returns a deterministic, concurrency-safe source.
func NewLockedRand(seed1, seed2 uint64) *LockedRand {
	return &LockedRand{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

// Float64 returns the next draw.
func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}

// Perturber displaces a true coordinate to a random point inside a disk of
// radius maxRadius (degrees, planar metric).
type Perturber struct {
	maxRadius float64
	rnd       RandSource
}

// NewPerturber creates a Perturber. A nil rnd uses the process-wide generator.
func NewPerturber(maxRadius float64, rnd RandSource) (*Perturber, error) {
	if !finite(maxRadius) || maxRadius <= 0 {
		return nil, fmt.Errorf("max obfuscated radius must be positive, got %v", maxRadius)
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Perturber{maxRadius: maxRadius, rnd: rnd}, nil
}

// MaxRadius returns the displacement bound.
func (p *Perturber) MaxRadius() float64 { return p.maxRadius }

// Perturb returns an obfuscated coordinate for (lat, lon).
//
// The offset is drawn uniformly by area from a disk on the local ground plane
// (r = R·c·√u, not r = R·u), and the longitude component is divided by
// c = cos(lat) so it is expressed in degrees of longitude. Scaling the ground
// radius by c keeps the raw-degree displacement ≤ R, which is the bound the
// region planner relies on.
func (p *Perturber) Perturb(lat, lon float64) (float64, float64, error) {
	if err := ValidateCoordinate(lat, lon); err != nil {
		return 0, 0, err
	}

	theta := 2 * math.Pi * p.rnd.Float64()
	u := p.rnd.Float64()

	c := math.Cos(toRad(lat))
	r := p.maxRadius * c * math.Sqrt(u)

	dLat := r * math.Sin(theta)
	dLon := 0.0
	if c >= poleEpsilon {
		dLon = r * math.Cos(theta) / c
	}

	return lat + dLat, lon + dLon, nil
}
