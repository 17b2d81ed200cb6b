package brackets

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// parseScore turns an opaque, sport-dependent score string into a goal
// count. Non-numeric scores are valid input ("21-19, 21-15" set scores, a
// walkover marker) and simply carry no goal tally.
func parseScore(s *string) (int, bool) {
	if s == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ComputeStandings aggregates completed round-0 matches into a ranked table.
// Win = 3 points, draw = 1 each, loss = 0. A match is a draw iff both scores
// parse and are equal, or its outcome is an explicit draw. When scores do
// not parse the match falls back to winner-only scoring and contributes no
// goals. Competitors without a completed match are not listed at all.
//
// Ordering: points desc, goal difference desc, goals for desc. The sort is
// stable; ties beyond goals-for keep first-appearance order, deliberately
// unordered beyond that. Recomputing over the same matches yields an
// identical table. Never fails: malformed rows degrade, they do not reject.
func ComputeStandings(matches []*models.Match) []models.Standing {
	table := make(map[int]*models.Standing)
	order := make([]int, 0)

	row := func(id int) *models.Standing {
		if s, ok := table[id]; ok {
			return s
		}
		s := &models.Standing{CompetitorID: id}
		table[id] = s
		order = append(order, id)
		return s
	}

	for _, m := range matches {
		if m.Round != 0 || m.Status != models.MatchStatusCompleted {
			continue
		}
		if m.Competitor1ID == nil || m.Competitor2ID == nil {
			continue
		}

		s1, ok1 := parseScore(m.Score1)
		s2, ok2 := parseScore(m.Score2)
		scored := ok1 && ok2

		r1 := row(*m.Competitor1ID)
		r2 := row(*m.Competitor2ID)
		r1.Played++
		r2.Played++

		if scored {
			r1.GoalsFor += s1
			r1.GoalsAgainst += s2
			r2.GoalsFor += s2
			r2.GoalsAgainst += s1
		}

		switch {
		case m.Outcome == models.OutcomeDraw || (scored && s1 == s2):
			r1.Draws++
			r2.Draws++
			r1.Points += pointsForDraw
			r2.Points += pointsForDraw
		case m.WinnerID != nil && *m.WinnerID == *m.Competitor1ID:
			creditWin(r1, r2)
		case m.WinnerID != nil && *m.WinnerID == *m.Competitor2ID:
			creditWin(r2, r1)
		case scored && s1 > s2:
			creditWin(r1, r2)
		case scored && s2 > s1:
			creditWin(r2, r1)
		}
	}

	standings := make([]models.Standing, 0, len(order))
	for _, id := range order {
		s := table[id]
		s.GoalDifference = s.GoalsFor - s.GoalsAgainst
		standings = append(standings, *s)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].GoalDifference != standings[j].GoalDifference {
			return standings[i].GoalDifference > standings[j].GoalDifference
		}
		return standings[i].GoalsFor > standings[j].GoalsFor
	})
	return standings
}

func creditWin(winner, loser *models.Standing) {
	winner.Wins++
	winner.Points += pointsForWin
	loser.Losses++
}
