package models

import "time"

type Announcement struct {
	ID        int       `json:"id"`
	EventID   int       `json:"event_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
