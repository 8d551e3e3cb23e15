package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

type sampleStudent struct {
	first, last, nid string
	scores           []float64
}

var sampleStudents = []sampleStudent{
	{"Lucia", "Fernandez", "1720000001", []float64{9.5, 9.0, 9.8, 9.2}},
	{"Mateo", "Gomez", "1720000002", []float64{8.0, 8.5, 7.9, 8.4}},
	{"Valentina", "Herrera", "1720000003", []float64{7.0, 7.2, 6.8, 7.5}},
	{"Santiago", "Lopez", "1720000004", []float64{6.0, 6.3, 6.1, 5.9}},
	{"Camila", "Torres", "1720000005", []float64{5.0, 4.5, 6.0, 5.2}},
}

var sampleSubjects = [][2]string{
	{"Mathematics", "MAT-10A"},
	{"Language", "LEN-10A"},
	{"Natural Sciences", "CCN-10A"},
	{"History", "HIS-10A"},
}

// Seed loads a small tenth-grade class with one active term. Averages are left for the caller to rebuild.
func Seed(ctx context.Context, store *Store) error {
	periods := NewPeriodRepository(store)
	evalTypes := NewEvaluationTypeRepository(store)
	subjects := NewSubjectRepository(store)
	students := NewStudentRepository(store)
	grades := NewGradeEntryRepository(store)

	year := time.Now().UTC().Year()
	term := &models.GradingPeriod{
		Name:      fmt.Sprintf("Term 1 %d", year),
		StartDate: time.Date(year, time.February, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}
	if err := periods.Create(ctx, term); err != nil {
		return err
	}
	if err := periods.Create(ctx, &models.GradingPeriod{
		Name:      fmt.Sprintf("Term 2 %d", year),
		StartDate: time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, time.December, 15, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		return err
	}

	exam := &models.EvaluationType{Name: "Exam", Weight: 40}
	if err := evalTypes.Create(ctx, exam); err != nil {
		return err
	}
	homework := &models.EvaluationType{Name: "Homework", Weight: 30}
	if err := evalTypes.Create(ctx, homework); err != nil {
		return err
	}
	if err := evalTypes.Create(ctx, &models.EvaluationType{Name: "Project", Weight: 30}); err != nil {
		return err
	}

	teacherID := "teacher-demo"
	subjectIDs := make([]string, 0, len(sampleSubjects))
	for _, s := range sampleSubjects {
		sub := &models.Subject{Name: s[0], Code: s[1], GradeLevel: "10", Section: "A", TeacherID: &teacherID}
		if err := subjects.Create(ctx, sub); err != nil {
			return fmt.Errorf("seed subject %s: %w", s[1], err)
		}
		subjectIDs = append(subjectIDs, sub.ID)
	}

	for _, s := range sampleStudents {
		st := &models.Student{FirstName: s.first, LastName: s.last, NationalID: s.nid, GradeLevel: "10", Section: "A", Active: true}
		if err := students.Create(ctx, st); err != nil {
			return fmt.Errorf("seed student %s: %w", s.nid, err)
		}
		for i, subjectID := range subjectIDs {
			for j, evalTypeID := range []string{exam.ID, homework.ID} {
				score := s.scores[i]
				if j == 1 && score < 10 {
					score += 0.5
					if score > 10 {
						score = 10
					}
				}
				entry := &models.GradeEntry{
					StudentID:        st.ID,
					SubjectID:        subjectID,
					TeacherID:        teacherID,
					PeriodID:         term.ID,
					EvaluationTypeID: evalTypeID,
					Score:            score,
					EvaluatedOn:      term.StartDate.AddDate(0, 1, i*7),
				}
				if err := grades.Upsert(ctx, entry); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
