package brackets

import "errors"

var (
	// ErrInvalidBracketSize is returned when the requested bracket size is
	// not a power of two, is below 2, or cannot hold all competitors.
	ErrInvalidBracketSize = errors.New("bracket size must be a power of two >= 2 and hold all competitors")

	// ErrTooManySeeds is returned when more competitors carry a seed rank
	// than the canonical placement table supports, or than the bracket holds.
	ErrTooManySeeds = errors.New("too many seeded competitors for this bracket")

	// ErrEmptyBracket is returned when a slot assignment contains no
	// competitors at all.
	ErrEmptyBracket = errors.New("cannot generate a bracket from an empty slot assignment")
)
