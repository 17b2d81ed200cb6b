package models

// Standing is one row of a regular-season table. It is derived from completed
// round-0 matches on demand and never persisted.
type Standing struct {
	CompetitorID   int `json:"competitor_id"`
	Played         int `json:"played"`
	Wins           int `json:"wins"`
	Draws          int `json:"draws"`
	Losses         int `json:"losses"`
	GoalsFor       int `json:"goals_for"`
	GoalsAgainst   int `json:"goals_against"`
	GoalDifference int `json:"goal_difference"`
	Points         int `json:"points"`

	// Populated by the standings service for responses.
	Competitor *Competitor `json:"competitor,omitempty"`
}
