package brackets

import (
	"reflect"
	"testing"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

func strPtr(s string) *string { return &s }

func completedMatch(c1, c2 int, score1, score2 string, winner *int, outcome models.MatchOutcome) *models.Match {
	m := &models.Match{
		Round:         0,
		Competitor1ID: intPtr(c1),
		Competitor2ID: intPtr(c2),
		Status:        models.MatchStatusCompleted,
		Outcome:       outcome,
		WinnerID:      winner,
	}
	if score1 != "" {
		m.Score1 = strPtr(score1)
	}
	if score2 != "" {
		m.Score2 = strPtr(score2)
	}
	return m
}

// A beats B 3-1, B draws C 2-2, C loses to A 0-2.
func TestComputeStandingsPointsAndDifference(t *testing.T) {
	const a, b, c = 1, 2, 3
	matches := []*models.Match{
		completedMatch(a, b, "3", "1", intPtr(a), models.OutcomeWin),
		completedMatch(b, c, "2", "2", nil, models.OutcomeDraw),
		completedMatch(c, a, "0", "2", intPtr(a), models.OutcomeWin),
	}

	standings := ComputeStandings(matches)
	if len(standings) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(standings))
	}

	if standings[0].CompetitorID != a || standings[0].Points != 6 {
		t.Errorf("A should lead with 6 points, got competitor %d with %d", standings[0].CompetitorID, standings[0].Points)
	}
	if standings[0].GoalDifference != 4 {
		t.Errorf("A goal difference should be +4, got %d", standings[0].GoalDifference)
	}

	for _, row := range standings[1:] {
		if row.Points != 1 {
			t.Errorf("competitor %d should have 1 point, got %d", row.CompetitorID, row.Points)
		}
	}
	// B and C tie on points and goal difference (-2); B ranks on goals for.
	if standings[1].CompetitorID != b || standings[2].CompetitorID != c {
		t.Errorf("expected order A, B, C; got %d, %d, %d",
			standings[0].CompetitorID, standings[1].CompetitorID, standings[2].CompetitorID)
	}
}

func TestComputeStandingsDeterministic(t *testing.T) {
	matches := []*models.Match{
		completedMatch(1, 2, "1", "0", intPtr(1), models.OutcomeWin),
		completedMatch(3, 4, "2", "2", nil, models.OutcomeDraw),
		completedMatch(1, 3, "0", "0", nil, models.OutcomeDraw),
		completedMatch(2, 4, "5", "3", intPtr(2), models.OutcomeWin),
	}

	first := ComputeStandings(matches)
	second := ComputeStandings(matches)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recomputation over unchanged matches must be identical:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestComputeStandingsWinnerOnlyFallback(t *testing.T) {
	// No scores at all: winner still takes 3 points, no goals tallied.
	matches := []*models.Match{
		completedMatch(1, 2, "", "", intPtr(2), models.OutcomeWin),
	}
	standings := ComputeStandings(matches)
	if len(standings) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(standings))
	}
	if standings[0].CompetitorID != 2 || standings[0].Points != 3 {
		t.Errorf("winner should top the table with 3 points, got %+v", standings[0])
	}
	if standings[0].GoalsFor != 0 || standings[1].GoalsAgainst != 0 {
		t.Error("scoreless matches must not contribute goals")
	}
}

func TestComputeStandingsUnparsableScores(t *testing.T) {
	// Set scores do not parse as integers: the match degrades to
	// winner-only scoring and touches no goal columns.
	matches := []*models.Match{
		completedMatch(1, 2, "21-19, 21-15", "19-21, 15-21", intPtr(1), models.OutcomeWin),
	}
	standings := ComputeStandings(matches)
	if standings[0].CompetitorID != 1 || standings[0].Points != 3 {
		t.Errorf("expected winner-only fallback to award 3 points, got %+v", standings[0])
	}
	for _, row := range standings {
		if row.GoalsFor != 0 || row.GoalsAgainst != 0 {
			t.Errorf("unparsable scores must leave goals untouched, got %+v", row)
		}
	}
}

func TestComputeStandingsEqualScoresAreDraw(t *testing.T) {
	// Equal parseable scores are a draw even if a winner was entered.
	matches := []*models.Match{
		completedMatch(1, 2, "1", "1", intPtr(1), models.OutcomeWin),
	}
	standings := ComputeStandings(matches)
	for _, row := range standings {
		if row.Points != 1 || row.Draws != 1 {
			t.Errorf("equal scores should score as a draw, got %+v", row)
		}
	}
}

func TestComputeStandingsExclusions(t *testing.T) {
	matches := []*models.Match{
		completedMatch(1, 2, "2", "0", intPtr(1), models.OutcomeWin),
		// Elimination matches never feed the table.
		{Round: 1, MatchNumber: 1, Competitor1ID: intPtr(3), Competitor2ID: intPtr(4),
			Status: models.MatchStatusCompleted, Outcome: models.OutcomeWin, WinnerID: intPtr(3)},
		// Unfinished round-0 matches do not count as played.
		{Round: 0, Competitor1ID: intPtr(1), Competitor2ID: intPtr(5), Status: models.MatchStatusLive},
	}

	standings := ComputeStandings(matches)
	if len(standings) != 2 {
		t.Fatalf("only competitors with completed round-0 matches belong in the table, got %d rows", len(standings))
	}
	for _, row := range standings {
		if row.CompetitorID > 2 {
			t.Errorf("competitor %d should not appear", row.CompetitorID)
		}
	}
}

func TestComputeStandingsGoalsForTieBreak(t *testing.T) {
	// Both winners on 3 points with equal difference; higher goals-for ranks first.
	matches := []*models.Match{
		completedMatch(1, 2, "1", "0", intPtr(1), models.OutcomeWin),
		completedMatch(3, 4, "4", "3", intPtr(3), models.OutcomeWin),
	}
	standings := ComputeStandings(matches)
	if standings[0].CompetitorID != 3 {
		t.Errorf("competitor 3 should lead on goals for, got %d", standings[0].CompetitorID)
	}
}
