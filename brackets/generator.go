package brackets

import (
	"github.com/Marling1212/ntu-sports-sub001/models"
)

// feed tracks what a match contributes to the next round during generation.
type feed struct {
	winner *int // already-known winner (bye cascade)
	dead   bool // neither side can ever be populated
}

// Generate builds the full single-elimination match set for a slot
// assignment produced by AssignSlots. Round 1 pairs slot 2i with slot 2i+1
// as match i+1; rounds 2..N are placeholders covering the corresponding
// round-1 slot ranges. A round-1 pair with exactly one populated slot is a
// bye whose winner is advanced into the next round immediately, cascading as
// far as dead sections of the draw allow. The result always contains
// bracketSize-1 matches.
func Generate(slots []*int) ([]*models.Match, error) {
	bracketSize := len(slots)
	if !isPowerOfTwo(bracketSize) {
		return nil, ErrInvalidBracketSize
	}

	populated := 0
	for _, s := range slots {
		if s != nil {
			populated++
		}
	}
	if populated == 0 {
		return nil, ErrEmptyBracket
	}

	rounds := NumRounds(bracketSize)
	matches := make([]*models.Match, 0, bracketSize-1)

	current := make([]feed, bracketSize/2)
	for i := 0; i < bracketSize/2; i++ {
		c1, c2 := slots[2*i], slots[2*i+1]
		m := &models.Match{
			Round:         1,
			MatchNumber:   i + 1,
			Competitor1ID: c1,
			Competitor2ID: c2,
			Status:        models.MatchStatusUpcoming,
			Outcome:       models.OutcomePending,
		}
		switch {
		case c1 != nil && c2 != nil:
			// real pairing, winner pending
		case c1 != nil:
			m.Status = models.MatchStatusBye
			m.Outcome = models.OutcomeWin
			m.WinnerID = c1
			current[i] = feed{winner: c1}
		case c2 != nil:
			m.Status = models.MatchStatusBye
			m.Outcome = models.OutcomeWin
			m.WinnerID = c2
			current[i] = feed{winner: c2}
		default:
			current[i] = feed{dead: true}
		}
		matches = append(matches, m)
	}

	for r := 2; r <= rounds; r++ {
		next := make([]feed, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			f1, f2 := current[i], current[i+1]
			m := &models.Match{
				Round:       r,
				MatchNumber: i/2 + 1,
				Status:      models.MatchStatusUpcoming,
				Outcome:     models.OutcomePending,
			}
			m.Competitor1ID = f1.winner
			m.Competitor2ID = f2.winner

			switch {
			case f1.dead && f2.dead:
				next[i/2] = feed{dead: true}
			case f1.winner != nil && f2.dead:
				m.Status = models.MatchStatusBye
				m.Outcome = models.OutcomeWin
				m.WinnerID = f1.winner
				next[i/2] = feed{winner: f1.winner}
			case f2.winner != nil && f1.dead:
				m.Status = models.MatchStatusBye
				m.Outcome = models.OutcomeWin
				m.WinnerID = f2.winner
				next[i/2] = feed{winner: f2.winner}
			default:
				// At least one side still depends on an unresolved match;
				// winners cascaded from byes stay in their slot and wait.
				next[i/2] = feed{}
			}
			matches = append(matches, m)
		}
		current = next
	}

	return matches, nil
}
