package domain

import "time"

type Position struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	CreatedAt  time.Time   `json:"created_at"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

type Candidate struct {
	ID         int64     `json:"id"`
	PositionID int64     `json:"position_id"`
	Name       string    `json:"name"`
	Manifesto  string    `json:"manifesto,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
