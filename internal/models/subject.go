package models

import "time"

// Subject represents an academic subject taught to one grade level and section.
type Subject struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Code       string    `db:"code" json:"code"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	Section    string    `db:"section" json:"section"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	GradeLevel string
	Section    string
	TeacherID  string
}
