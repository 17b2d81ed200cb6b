package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusDelayed   MatchStatus = "delayed"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusBye       MatchStatus = "bye"
)

// MatchOutcome is the tagged result of a match. A draw is a first-class
// outcome, not a sentinel winner id; winner_id is only set for OutcomeWin.
type MatchOutcome string

const (
	OutcomePending MatchOutcome = "pending"
	OutcomeWin     MatchOutcome = "win"
	OutcomeDraw    MatchOutcome = "draw"
)

// Match is a single fixture. Round 0 is the regular-season (round-robin)
// phase; rounds 1..N are the elimination bracket, where N = log2(bracket size).
// MatchNumber is 1-based and unique within (event, round).
type Match struct {
	ID            int          `json:"id"`
	EventID       int          `json:"event_id"`
	Round         int          `json:"round"`
	MatchNumber   int          `json:"match_number"`
	Competitor1ID *int         `json:"competitor1_id,omitempty"`
	Competitor2ID *int         `json:"competitor2_id,omitempty"`
	Score1        *string      `json:"score1,omitempty"`
	Score2        *string      `json:"score2,omitempty"`
	Status        MatchStatus  `json:"status"`
	Outcome       MatchOutcome `json:"outcome"`
	WinnerID      *int         `json:"winner_id,omitempty"`
	MatchTime     *time.Time   `json:"match_time,omitempty"`  // owned by the scheduling subsystem, read-only here
	CourtLabel    *string      `json:"court_label,omitempty"` // same
	CreatedAt     time.Time    `json:"created_at"`

	// Optional linked data, populated by services for responses.
	Competitor1 *Competitor `json:"competitor1,omitempty"`
	Competitor2 *Competitor `json:"competitor2,omitempty"`
}

// IsTerminal reports whether the match outcome is settled.
func (m *Match) IsTerminal() bool {
	return m.Status == MatchStatusCompleted || m.Status == MatchStatusBye
}

// HasCompetitor reports whether id occupies one of the match's two slots.
func (m *Match) HasCompetitor(id int) bool {
	if m.Competitor1ID != nil && *m.Competitor1ID == id {
		return true
	}
	return m.Competitor2ID != nil && *m.Competitor2ID == id
}
