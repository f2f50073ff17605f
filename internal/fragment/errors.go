package fragment

import "errors"

var (
	// ErrInactiveBody is returned when exploding a body that has been retired.
	ErrInactiveBody = errors.New("body is not active")

	// ErrInvariant is returned in strict mode when the live tree is found in
	// a state fragmentation should never produce.
	ErrInvariant = errors.New("subdivision tree invariant violated")

	// ErrPassCompleted is returned when a detonation is completed twice.
	ErrPassCompleted = errors.New("detonation already completed")

	// ErrInvalidDepth is returned for blasts that do not reach below the body root.
	ErrInvalidDepth = errors.New("blast depth must be at least 1")
)
