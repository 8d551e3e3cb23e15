package models

import "time"

// GradingPeriod models a bounded grading window such as a term.
type GradingPeriod struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EvaluationType names a kind of assessment. Weight is informational only.
type EvaluationType struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Weight    float64   `db:"weight" json:"weight"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
