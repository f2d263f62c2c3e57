package model

import "time"

// Run is an archived, finished simulation.
type Run struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Metrics   Metrics    `json:"metrics"`
	Timeline  []Interval `json:"timeline"`
	CreatedAt time.Time  `json:"created_at"`
}
