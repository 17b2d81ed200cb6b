package brackets

import "fmt"

// NumRounds returns log2(bracketSize): the number of elimination rounds.
func NumRounds(bracketSize int) int {
	n := 0
	for size := 1; size < bracketSize; size <<= 1 {
		n++
	}
	return n
}

// NextMatchNumber returns the match number in the following round that the
// winner of matchNumber advances into.
func NextMatchNumber(matchNumber int) int {
	return (matchNumber + 1) / 2
}

// WinnerSlot returns which slot of the next-round match the winner of
// matchNumber occupies: 1 for odd match numbers, 2 for even.
func WinnerSlot(matchNumber int) int {
	if matchNumber%2 == 1 {
		return 1
	}
	return 2
}

// SourceMatchNumbers returns the two match numbers of the previous round
// feeding matchNumber.
func SourceMatchNumbers(matchNumber int) (int, int) {
	return 2*matchNumber - 1, 2 * matchNumber
}

// SlotRange returns the contiguous range of original round-1 slot numbers
// [lo, hi] that match matchNumber of round round covers. Display code uses
// it to attribute later-round results back to a bracket position.
func SlotRange(round, matchNumber int) (lo, hi int) {
	span := 1 << uint(round)
	lo = (matchNumber - 1) * span
	return lo, lo + span - 1
}

// RoundName returns the conventional name for a round in a bracket of
// totalRounds elimination rounds.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round of %d", 1<<uint(totalRounds-round+1))
	}
}
