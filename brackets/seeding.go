package brackets

import "math/rand"

// MaxSeeds is the size of the canonical placement table. Eight protected
// seeds cover everything up to a Round-of-16 seeding convention; competitors
// beyond that enter the draw unseeded.
const MaxSeeds = 8

// NextPowerOfTwo returns the smallest power of two >= n, with a floor of 2.
func NextPowerOfTwo(n int) int {
	size := 2
	for size < n {
		size <<= 1
	}
	return size
}

func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// bitReversalOrder returns the bit-reversal permutation of 0..n-1 for a
// power-of-two n. It drives the order in which seed pairs claim bracket
// quarters: each new pair lands in the half not yet holding a stronger seed.
func bitReversalOrder(n int) []int {
	if n == 1 {
		return []int{0}
	}
	half := bitReversalOrder(n / 2)
	out := make([]int, 0, n)
	for _, v := range half {
		out = append(out, 2*v)
	}
	for _, v := range half {
		out = append(out, 2*v+1)
	}
	return out
}

// CanonicalSeedSlots returns the slot index for each of seedCount seeds
// (index 0 = seed 1) in a bracket of bracketSize slots.
//
// Odd seeds sit at the low edge of successively bisected sections and even
// seeds mirror them from the top, so for 64 slots the table reads
// seed 1 at slot 0, seed 2 at 63, then 32, 31, 16, 47, 48 and 15.
// Seeds 1 and 2 can only meet in the final, 3 and 4 no earlier than the
// semifinals, and so on.
func CanonicalSeedSlots(bracketSize, seedCount int) ([]int, error) {
	if !isPowerOfTwo(bracketSize) {
		return nil, ErrInvalidBracketSize
	}
	if seedCount > MaxSeeds || seedCount > bracketSize {
		return nil, ErrTooManySeeds
	}
	if seedCount <= 0 {
		return []int{}, nil
	}

	pairs := 1
	for pairs*2 < seedCount {
		pairs <<= 1
	}
	anchors := bitReversalOrder(pairs)

	slots := make([]int, seedCount)
	for k := 0; k < seedCount; k++ {
		anchor := anchors[k/2] * (bracketSize / pairs)
		if k%2 == 0 {
			slots[k] = anchor
		} else {
			slots[k] = bracketSize - 1 - anchor
		}
	}
	return slots, nil
}

// AssignSlots places competitors into a bracket of bracketSize slots.
// seeded must be ordered by ascending seed rank (strongest first); unseeded
// competitors fill the remaining slots left to right in their given order.
// Callers wanting a random draw for unseeded entrants shuffle the unseeded
// slice beforehand. Returns a slot -> competitor-id array; nil entries are
// byes. Pure: no shared state, no side effects.
func AssignSlots(seeded, unseeded []int, bracketSize int) ([]*int, error) {
	if !isPowerOfTwo(bracketSize) || len(seeded)+len(unseeded) > bracketSize {
		return nil, ErrInvalidBracketSize
	}

	seedSlots, err := CanonicalSeedSlots(bracketSize, len(seeded))
	if err != nil {
		return nil, err
	}

	slots := make([]*int, bracketSize)
	for i, id := range seeded {
		id := id
		slots[seedSlots[i]] = &id
	}

	next := 0
	for _, id := range unseeded {
		for slots[next] != nil {
			next++
		}
		id := id
		slots[next] = &id
	}
	return slots, nil
}

// AssignSlotsRandom scatters all competitors, seeded or not, over uniformly
// random slots. It is an explicit alternate draw mode, never the default.
func AssignSlotsRandom(competitors []int, bracketSize int, rng *rand.Rand) ([]*int, error) {
	if !isPowerOfTwo(bracketSize) || len(competitors) > bracketSize {
		return nil, ErrInvalidBracketSize
	}

	slots := make([]*int, bracketSize)
	perm := rng.Perm(bracketSize)
	for i, id := range competitors {
		id := id
		slots[perm[i]] = &id
	}
	return slots, nil
}
