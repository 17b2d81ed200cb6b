package models

import "time"

// EventType selects how the event is played out.
type EventType string

const (
	// EventSingleElimination seeds straight into a knockout bracket.
	EventSingleElimination EventType = "single_elimination"
	// EventSeasonPlay runs a round-robin regular season (round 0) whose
	// standings seed the playoff bracket (rounds >= 1).
	EventSeasonPlay EventType = "season_play"
)

type EventStatus string

const (
	EventStatusSoon         EventStatus = "soon"
	EventStatusRegistration EventStatus = "registration"
	EventStatusActive       EventStatus = "active"
	EventStatusCompleted    EventStatus = "completed"
	EventStatusCanceled     EventStatus = "canceled"
)

type Event struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Sport       string      `json:"sport"`
	Type        EventType   `json:"type"`
	OrganizerID int         `json:"organizer_id"`
	Location    *string     `json:"location,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Status      EventStatus `json:"status"`
	LogoKey     *string     `json:"-"`
	LogoURL     *string     `json:"logo_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`

	// Optional linked data, populated by services.
	Organizer   *User        `json:"organizer,omitempty"`
	Competitors []Competitor `json:"competitors,omitempty"`
	Matches     []Match      `json:"matches,omitempty"`
}
