package models

import "time"

// GradeEntry is a single score a teacher recorded for a student.
// (StudentID, SubjectID, PeriodID, EvaluationTypeID, EvaluatedOn) is unique.
type GradeEntry struct {
	ID               string    `db:"id" json:"id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	SubjectID        string    `db:"subject_id" json:"subject_id"`
	TeacherID        string    `db:"teacher_id" json:"teacher_id"`
	PeriodID         string    `db:"period_id" json:"period_id"`
	EvaluationTypeID string    `db:"evaluation_type_id" json:"evaluation_type_id"`
	Score            float64   `db:"score" json:"score"`
	EvaluatedOn      time.Time `db:"evaluated_on" json:"evaluated_on"`
	Notes            string    `db:"notes" json:"notes"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
	SubjectName      string    `db:"subject_name" json:"subject_name,omitempty"`
}

// GradeFilter scopes grade listing queries.
type GradeFilter struct {
	StudentID string
	PeriodID  string
}

// AverageKey identifies one row of the subject average table.
type AverageKey struct {
	StudentID string `db:"student_id" json:"student_id" validate:"required"`
	SubjectID string `db:"subject_id" json:"subject_id" validate:"required"`
	PeriodID  string `db:"period_id" json:"period_id" validate:"required"`
}

// SubjectAverage is the derived mean of a student's scores in one subject and period.
type SubjectAverage struct {
	StudentID   string       `db:"student_id" json:"student_id"`
	SubjectID   string       `db:"subject_id" json:"subject_id"`
	PeriodID    string       `db:"period_id" json:"period_id"`
	Average     float64      `db:"average" json:"average"`
	GradeCount  int          `db:"grade_count" json:"grade_count"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	SubjectName string       `db:"subject_name" json:"subject_name,omitempty"`
	Category    RiskCategory `db:"-" json:"category,omitempty"`
	Cached      bool         `db:"-" json:"cached"`
}

// Key returns the average table key for the row.
func (a SubjectAverage) Key() AverageKey {
	return AverageKey{StudentID: a.StudentID, SubjectID: a.SubjectID, PeriodID: a.PeriodID}
}

// StudentGeneralAverage is the mean of a student's subject averages within a period.
type StudentGeneralAverage struct {
	StudentID      string       `db:"student_id" json:"student_id"`
	FirstName      string       `db:"first_name" json:"first_name"`
	LastName       string       `db:"last_name" json:"last_name"`
	GradeLevel     string       `db:"grade_level" json:"grade_level"`
	Section        string       `db:"section" json:"section"`
	PeriodID       string       `db:"period_id" json:"period_id"`
	GeneralAverage float64      `db:"general_average" json:"general_average"`
	SubjectCount   int          `db:"subject_count" json:"subject_count"`
	Category       RiskCategory `db:"-" json:"category"`
}

// ReportCard groups a student's subject averages for one period with the general average.
type ReportCard struct {
	StudentID      string           `json:"student_id"`
	PeriodID       string           `json:"period_id"`
	Subjects       []SubjectAverage `json:"subjects"`
	GeneralAverage float64          `json:"general_average"`
	Category       RiskCategory     `json:"category"`
}

// GradeRecordResult is returned after a grade write and its average refresh.
type GradeRecordResult struct {
	Entry          GradeEntry      `json:"entry"`
	SubjectAverage *SubjectAverage `json:"subject_average,omitempty"`
	GeneralAverage *float64        `json:"general_average,omitempty"`
	AtRisk         bool            `json:"at_risk"`
}
