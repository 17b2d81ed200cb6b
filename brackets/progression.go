package brackets

import (
	"github.com/Marling1212/ntu-sports-sub001/models"
)

// Grid indexes a bracket's matches by round and match number.
type Grid map[int]map[int]*models.Match

// BuildGrid indexes elimination matches (round >= 1). Round-0 matches are
// ignored: regular-season play does not feed the progression resolver.
func BuildGrid(matches []*models.Match) Grid {
	grid := make(Grid)
	for _, m := range matches {
		if m.Round < 1 {
			continue
		}
		if grid[m.Round] == nil {
			grid[m.Round] = make(map[int]*models.Match)
		}
		grid[m.Round][m.MatchNumber] = m
	}
	return grid
}

// Match returns the match at (round, matchNumber), or nil.
func (g Grid) Match(round, matchNumber int) *models.Match {
	return g[round][matchNumber]
}

// Rounds returns the highest round present in the grid.
func (g Grid) Rounds() int {
	max := 0
	for r := range g {
		if r > max {
			max = r
		}
	}
	return max
}

// IsDeadEnd reports whether the match at (round, matchNumber) can never
// produce a winner: it is a placeholder with no competitors whose source
// matches, recursively, are dead as well. A missing match is a dead end.
// Recursion depth is bounded by the round number, i.e. log2(bracketSize).
func (g Grid) IsDeadEnd(round, matchNumber int) bool {
	m := g.Match(round, matchNumber)
	if m == nil {
		return true
	}
	if m.IsTerminal() || m.Competitor1ID != nil || m.Competitor2ID != nil {
		return false
	}
	if round == 1 {
		return true
	}
	src1, src2 := SourceMatchNumbers(matchNumber)
	return g.IsDeadEnd(round-1, src1) && g.IsDeadEnd(round-1, src2)
}

// RoundComplete reports whether every non-bye match of the round has been
// completed with a winner recorded. Byes count as settled. Callers are
// responsible for firing any round-completion announcement exactly once;
// this check itself is read-only and safe to repeat.
func RoundComplete(matches []*models.Match, round int) bool {
	found := false
	for _, m := range matches {
		if m.Round != round {
			continue
		}
		if m.Status == models.MatchStatusBye {
			found = true
			continue
		}
		if m.Status != models.MatchStatusCompleted || (m.WinnerID == nil && m.Outcome != models.OutcomeDraw) {
			return false
		}
		found = true
	}
	return found
}

// RoundSettled reports whether every match of an elimination round has been
// resolved: completed with a result, a bye, or a dead section of the draw
// that can never produce a pairing.
func (g Grid) RoundSettled(round int) bool {
	ms := g[round]
	if len(ms) == 0 {
		return false
	}
	for n, m := range ms {
		if m.Status == models.MatchStatusBye {
			continue
		}
		if m.Status == models.MatchStatusCompleted && (m.WinnerID != nil || m.Outcome == models.OutcomeDraw) {
			continue
		}
		if g.IsDeadEnd(round, n) {
			continue
		}
		return false
	}
	return true
}

// validTransitions is the match status state machine. Completed and bye are
// terminal; bye is only ever assigned at generation time.
var validTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusUpcoming: {models.MatchStatusLive, models.MatchStatusDelayed, models.MatchStatusCompleted},
	models.MatchStatusLive:     {models.MatchStatusCompleted, models.MatchStatusDelayed},
	models.MatchStatusDelayed:  {models.MatchStatusUpcoming, models.MatchStatusLive},
}

// CanTransition reports whether a match may move from one status to another.
func CanTransition(from, to models.MatchStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
