package models

import "time"

// Student represents a learner enrolled in the institution.
type Student struct {
	ID         string    `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	NationalID string    `db:"national_id" json:"national_id"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	Section    string    `db:"section" json:"section"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last names.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	GradeLevel string
	Section    string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
