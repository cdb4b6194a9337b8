package models

import "time"

type Project struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Column is a bucket on a project's board. A nil Capacity means unbounded.
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Capacity  *int   `json:"capacity,omitempty"`
	Occupancy int    `json:"occupancy"`
}

func (c Column) HasCapacity() bool {
	return c.Capacity != nil
}

// Dependency declares that TaskID may not move while the edge to BlockerID exists.
type Dependency struct {
	TaskID    string    `json:"task_id"`
	BlockerID string    `json:"blocker_id"`
	CreatedAt time.Time `json:"created_at"`
}
