package models

import "time"

// RiskCategory is the performance band a general or subject average falls into.
type RiskCategory string

// Category labels are shown verbatim to users.
const (
	CategoryExcellent RiskCategory = "Excellent"
	CategoryVeryGood  RiskCategory = "Very Good"
	CategoryGood      RiskCategory = "Good"
	CategoryRegular   RiskCategory = "Regular"
	CategoryAtRisk    RiskCategory = "At-Risk"
)

// Categories lists every category from best to worst.
var Categories = []RiskCategory{CategoryExcellent, CategoryVeryGood, CategoryGood, CategoryRegular, CategoryAtRisk}

// CategoryCount is one bucket of a period distribution.
type CategoryCount struct {
	Category RiskCategory `json:"category"`
	Students int          `json:"students"`
}

// RiskDistribution counts students per category for a period.
type RiskDistribution struct {
	PeriodID string          `json:"period_id"`
	Total    int             `json:"total"`
	Buckets  []CategoryCount `json:"buckets"`
}

// AtRiskAlert is queued when a grade write leaves a student below the at-risk threshold.
type AtRiskAlert struct {
	StudentID      string       `json:"student_id"`
	StudentName    string       `json:"student_name"`
	GradeLevel     string       `json:"grade_level"`
	Section        string       `json:"section"`
	PeriodID       string       `json:"period_id"`
	SubjectID      string       `json:"subject_id"`
	GeneralAverage float64      `json:"general_average"`
	Threshold      float64      `json:"threshold"`
	Category       RiskCategory `json:"category"`
	RaisedAt       time.Time    `json:"raised_at"`
}
