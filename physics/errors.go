package physics

import "errors"

// Configuration errors returned by NewBody, AddBody and NewRegistry.
var (
	ErrInvalidMass    = errors.New("physics: mass must be positive and finite")
	ErrInvalidDensity = errors.New("physics: density must be positive and finite")
	ErrInvalidParams  = errors.New("physics: invalid parameters")
)
