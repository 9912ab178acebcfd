package render

import (
	"math"

	"github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/lassoview/pkg/errors"
)

// Scale maps data values onto surface coordinates.
type Scale interface {
	Map(v float64) float64
	Ticks(n int) []float64
	Domain() (lo, hi float64)
}

// ScaleFunc builds a scale from a data domain and a surface range. The domain
// may be reversed.
type ScaleFunc func(domain, rng [2]float64) (Scale, error)

// unitScale is the part of a moremath scale that maps onto [0, 1].
type unitScale interface {
	Map(float64) float64
	Ticks(scale.TickOptions) (major, minor []float64)
}

// mapped wraps a unit scale built over the ascending domain; reversed
// domains flip the unit output.
type mapped struct {
	unit       unitScale
	domain     [2]float64
	rng        [2]float64
	reversed   bool
	degenerate bool
}

func (s *mapped) Map(v float64) float64 {
	if s.degenerate {
		return (s.rng[0] + s.rng[1]) / 2
	}
	u := s.unit.Map(v)
	if s.reversed {
		u = 1 - u
	}
	return s.rng[0] + u*(s.rng[1]-s.rng[0])
}

func (s *mapped) Ticks(n int) []float64 {
	if n < 1 {
		return nil
	}
	if s.degenerate {
		return []float64{s.domain[0]}
	}
	major, _ := s.unit.Ticks(scale.TickOptions{Max: n})
	return major
}

func (s *mapped) Domain() (float64, float64) { return s.domain[0], s.domain[1] }

func checkFinite(domain, rng [2]float64) error {
	for _, v := range []float64{domain[0], domain[1], rng[0], rng[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig,
				"scale domain %v and range %v must be finite", domain, rng)
		}
	}
	return nil
}

// Linear is a [ScaleFunc] for a linear mapping.
func Linear(domain, rng [2]float64) (Scale, error) {
	if err := checkFinite(domain, rng); err != nil {
		return nil, err
	}
	lo, hi := math.Min(domain[0], domain[1]), math.Max(domain[0], domain[1])
	return &mapped{
		unit:       &scale.Linear{Min: lo, Max: hi},
		domain:     domain,
		rng:        rng,
		reversed:   domain[0] > domain[1],
		degenerate: lo == hi,
	}, nil
}

// Log is a [ScaleFunc] for a base-10 logarithmic mapping. The domain must be
// strictly positive unless it is degenerate.
func Log(domain, rng [2]float64) (Scale, error) {
	if err := checkFinite(domain, rng); err != nil {
		return nil, err
	}
	if domain[0] == domain[1] {
		return &mapped{domain: domain, rng: rng, degenerate: true}, nil
	}
	lo, hi := math.Min(domain[0], domain[1]), math.Max(domain[0], domain[1])
	if lo <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"log scale domain %v must be positive", domain)
	}
	unit, err := scale.NewLog(lo, hi, 10)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log scale")
	}
	return &mapped{unit: &unit, domain: domain, rng: rng, reversed: domain[0] > domain[1]}, nil
}

// extent returns the minimum and maximum of vs, or [0, 0] when vs is empty.
func extent(vs []float64) [2]float64 {
	if len(vs) == 0 {
		return [2]float64{}
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return [2]float64{lo, hi}
}
