package models

import "time"

// Competitor is a registered player or team within an event. Seed is optional;
// competitors without one are unseeded and placed after seeded ones.
type Competitor struct {
	ID          int       `json:"id"`
	EventID     int       `json:"event_id"`
	Name        string    `json:"name"`
	Seed        *int      `json:"seed,omitempty"`
	Affiliation *string   `json:"affiliation,omitempty"`
	LogoKey     *string   `json:"-"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
