package physics

import "fmt"

// Params holds the simulation-wide constants of the force model.
//
// Softening and MinDistanceSq are independent: softening² is added to every
// squared separation, and pairs whose softened squared separation is still
// below MinDistanceSq are skipped for the frame. With the defaults
// (0.01, 0.01) the skip triggers for true separations below ~0.0995, so the
// two constants should be re-derived together when either is tuned.
type Params struct {
	G             float64 // gravitational constant, simulation units
	Softening     float64 // epsilon added in quadrature to the separation
	MinDistanceSq float64 // softened squared distances below this produce no force

	// Workers is the number of goroutines used for the force pass.
	// 1 runs single-threaded, 0 uses GOMAXPROCS.
	Workers int
	// ParallelThreshold is the minimum body count before the force pass is split.
	ParallelThreshold int
}

// DefaultParams returns the constants the stock scenarios were tuned with.
func DefaultParams() Params {
	return Params{
		G:                 100,
		Softening:         0.01,
		MinDistanceSq:     0.01,
		Workers:           1,
		ParallelThreshold: 256,
	}
}

// Validate reports whether the parameters are usable.
func (p Params) Validate() error {
	switch {
	case p.G < 0:
		return fmt.Errorf("%w: gravity %v < 0", ErrInvalidParams, p.G)
	case p.Softening < 0:
		return fmt.Errorf("%w: softening %v < 0", ErrInvalidParams, p.Softening)
	case p.MinDistanceSq < 0:
		return fmt.Errorf("%w: min distance squared %v < 0", ErrInvalidParams, p.MinDistanceSq)
	case p.Workers < 0:
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidParams, p.Workers)
	case p.ParallelThreshold < 0:
		return fmt.Errorf("%w: parallel threshold %d < 0", ErrInvalidParams, p.ParallelThreshold)
	}
	return nil
}
