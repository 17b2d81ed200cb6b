package brackets

import (
	"testing"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

func TestNextMatchNumberAndSlot(t *testing.T) {
	tests := []struct {
		matchNumber int
		next        int
		slot        int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tc := range tests {
		if got := NextMatchNumber(tc.matchNumber); got != tc.next {
			t.Errorf("NextMatchNumber(%d) = %d, want %d", tc.matchNumber, got, tc.next)
		}
		if got := WinnerSlot(tc.matchNumber); got != tc.slot {
			t.Errorf("WinnerSlot(%d) = %d, want %d", tc.matchNumber, got, tc.slot)
		}
	}
}

func TestSourceMatchNumbers(t *testing.T) {
	src1, src2 := SourceMatchNumbers(3)
	if src1 != 5 || src2 != 6 {
		t.Errorf("SourceMatchNumbers(3) = (%d, %d), want (5, 6)", src1, src2)
	}
}

func TestSlotRange(t *testing.T) {
	tests := []struct {
		round, matchNumber, lo, hi int
	}{
		{1, 1, 0, 1},
		{1, 4, 6, 7},
		{2, 1, 0, 3},
		{2, 2, 4, 7},
		{3, 1, 0, 7},
		{3, 2, 8, 15},
	}
	for _, tc := range tests {
		lo, hi := SlotRange(tc.round, tc.matchNumber)
		if lo != tc.lo || hi != tc.hi {
			t.Errorf("SlotRange(%d, %d) = [%d, %d], want [%d, %d]",
				tc.round, tc.matchNumber, lo, hi, tc.lo, tc.hi)
		}
	}
}

func TestRoundName(t *testing.T) {
	tests := []struct {
		round, total int
		want         string
	}{
		{4, 4, "Final"},
		{3, 4, "Semifinals"},
		{2, 4, "Quarterfinals"},
		{1, 4, "Round of 16"},
		{1, 5, "Round of 32"},
		{1, 1, "Final"},
	}
	for _, tc := range tests {
		if got := RoundName(tc.round, tc.total); got != tc.want {
			t.Errorf("RoundName(%d, %d) = %q, want %q", tc.round, tc.total, got, tc.want)
		}
	}
}

func TestRoundComplete(t *testing.T) {
	win := intPtr(1)
	matches := []*models.Match{
		{Round: 1, MatchNumber: 1, Status: models.MatchStatusCompleted, Outcome: models.OutcomeWin, WinnerID: win},
		{Round: 1, MatchNumber: 2, Status: models.MatchStatusBye, Outcome: models.OutcomeWin, WinnerID: intPtr(3)},
		{Round: 1, MatchNumber: 3, Status: models.MatchStatusLive},
		{Round: 1, MatchNumber: 4, Status: models.MatchStatusCompleted, Outcome: models.OutcomeWin, WinnerID: intPtr(7)},
	}

	if RoundComplete(matches, 1) {
		t.Error("round with a live match should not be complete")
	}

	matches[2].Status = models.MatchStatusCompleted
	if RoundComplete(matches, 1) {
		t.Error("completed match without a winner should not count as settled")
	}

	matches[2].Outcome = models.OutcomeWin
	matches[2].WinnerID = intPtr(5)
	if !RoundComplete(matches, 1) {
		t.Error("round should be complete once every non-bye match has a winner")
	}

	if RoundComplete(matches, 2) {
		t.Error("a round with no matches is not complete")
	}
}

func TestRoundSettledTreatsDeadSectionsAsResolved(t *testing.T) {
	// Four competitors in the top half of an 8 bracket leave the bottom
	// semifinal as a dead placeholder.
	matches, err := Generate(slotsFor([]int{1, 2, 3, 4, 0, 0, 0, 0}, 8))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	grid := BuildGrid(matches)

	if grid.RoundSettled(2) {
		t.Error("round 2 should not be settled while the top semifinal is pending")
	}

	top := grid.Match(2, 1)
	top.Status = models.MatchStatusCompleted
	top.Outcome = models.OutcomeWin
	top.WinnerID = intPtr(1)
	if !grid.RoundSettled(2) {
		t.Error("round 2 should be settled once only the dead placeholder remains")
	}

	if grid.RoundSettled(4) {
		t.Error("an absent round is never settled")
	}
}

func TestGridDeadEnds(t *testing.T) {
	matches, err := Generate(slotsFor([]int{1, 2, 0, 0, 0, 0, 0, 3}, 8))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	grid := BuildGrid(matches)

	if !grid.IsDeadEnd(1, 2) {
		t.Error("empty round-1 pair should be a dead end")
	}
	if grid.IsDeadEnd(1, 1) {
		t.Error("a real pairing is not a dead end")
	}
	if grid.IsDeadEnd(1, 4) {
		t.Error("a bye still produces a winner and is not a dead end")
	}
	// Round-2 match 1 is fed by a live pairing, so it can still fill.
	if grid.IsDeadEnd(2, 1) {
		t.Error("placeholder fed by a live match is not a dead end")
	}
	if !grid.IsDeadEnd(5, 9) {
		t.Error("a missing match is a dead end")
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to models.MatchStatus }{
		{models.MatchStatusUpcoming, models.MatchStatusLive},
		{models.MatchStatusUpcoming, models.MatchStatusDelayed},
		{models.MatchStatusLive, models.MatchStatusCompleted},
		{models.MatchStatusDelayed, models.MatchStatusUpcoming},
		{models.MatchStatusDelayed, models.MatchStatusLive},
		{models.MatchStatusUpcoming, models.MatchStatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("transition %s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to models.MatchStatus }{
		{models.MatchStatusCompleted, models.MatchStatusLive},
		{models.MatchStatusBye, models.MatchStatusCompleted},
		{models.MatchStatusBye, models.MatchStatusLive},
		{models.MatchStatusLive, models.MatchStatusUpcoming},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("transition %s -> %s should be rejected", tc.from, tc.to)
		}
	}
}
