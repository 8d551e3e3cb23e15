package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
)

// StudentRepository is the in-memory student table.
type StudentRepository struct{ store *Store }

// NewStudentRepository binds a student repository to store.
func NewStudentRepository(store *Store) *StudentRepository { return &StudentRepository{store: store} }

// List filters, sorts and pages students like the SQL repository.
func (r *StudentRepository) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	matched := make([]models.Student, 0, len(r.store.students))
	for _, st := range r.store.students {
		if filter.GradeLevel != "" && st.GradeLevel != filter.GradeLevel {
			continue
		}
		if filter.Section != "" && st.Section != filter.Section {
			continue
		}
		if filter.Active != nil && st.Active != *filter.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(st.FirstName), search) &&
			!strings.Contains(strings.ToLower(st.LastName), search) &&
			!strings.Contains(strings.ToLower(st.NationalID), search) {
			continue
		}
		matched = append(matched, st)
	}

	less := func(a, b models.Student) bool { return a.LastName < b.LastName }
	switch filter.SortBy {
	case "first_name":
		less = func(a, b models.Student) bool { return a.FirstName < b.FirstName }
	case "created_at":
		less = func(a, b models.Student) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	desc := strings.EqualFold(filter.SortOrder, "DESC")
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if less(a, b) {
			return !desc
		}
		if less(b, a) {
			return desc
		}
		return a.ID < b.ID
	})

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// FindByID returns sql.ErrNoRows when the student does not exist.
func (r *StudentRepository) FindByID(_ context.Context, id string) (*models.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st, ok := r.store.students[id]
	if !ok {
		return nil, notFound()
	}
	return &st, nil
}

// ExistsByNationalID reports whether another student holds nationalID.
func (r *StudentRepository) ExistsByNationalID(_ context.Context, nationalID, excludeID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, st := range r.store.students {
		if st.NationalID == nationalID && st.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Create stores the student, enforcing national ID uniqueness.
func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, st := range r.store.students {
		if st.NationalID == student.NationalID {
			return repository.ErrDuplicateKey
		}
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	r.store.students[student.ID] = *student
	return nil
}

// Deactivate clears the active flag.
func (r *StudentRepository) Deactivate(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st, ok := r.store.students[id]
	if !ok {
		return notFound()
	}
	st.Active = false
	st.UpdatedAt = time.Now().UTC()
	r.store.students[id] = st
	return nil
}

// SubjectRepository is the in-memory subject table.
type SubjectRepository struct{ store *Store }

// NewSubjectRepository binds a subject repository to store.
func NewSubjectRepository(store *Store) *SubjectRepository { return &SubjectRepository{store: store} }

// List returns matching subjects ordered by name then code.
func (r *SubjectRepository) List(_ context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	subjects := make([]models.Subject, 0, len(r.store.subjects))
	for _, sub := range r.store.subjects {
		if filter.GradeLevel != "" && sub.GradeLevel != filter.GradeLevel {
			continue
		}
		if filter.Section != "" && sub.Section != filter.Section {
			continue
		}
		if filter.TeacherID != "" && (sub.TeacherID == nil || *sub.TeacherID != filter.TeacherID) {
			continue
		}
		subjects = append(subjects, sub)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].Code < subjects[j].Code
	})
	return subjects, nil
}

// FindByID returns sql.ErrNoRows when the subject does not exist.
func (r *SubjectRepository) FindByID(_ context.Context, id string) (*models.Subject, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sub, ok := r.store.subjects[id]
	if !ok {
		return nil, notFound()
	}
	return &sub, nil
}

// ExistsByCode reports whether code is taken.
func (r *SubjectRepository) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, sub := range r.store.subjects {
		if sub.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// Create stores the subject, enforcing code uniqueness.
func (r *SubjectRepository) Create(_ context.Context, subject *models.Subject) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, sub := range r.store.subjects {
		if sub.Code == subject.Code {
			return repository.ErrDuplicateKey
		}
	}
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	r.store.subjects[subject.ID] = *subject
	return nil
}

// PeriodRepository is the in-memory grading period table.
type PeriodRepository struct{ store *Store }

// NewPeriodRepository binds a period repository to store.
func NewPeriodRepository(store *Store) *PeriodRepository { return &PeriodRepository{store: store} }

func (r *PeriodRepository) sorted(activeOnly bool) []models.GradingPeriod {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	periods := make([]models.GradingPeriod, 0, len(r.store.periods))
	for _, p := range r.store.periods {
		if activeOnly && !p.Active {
			continue
		}
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if !periods[i].StartDate.Equal(periods[j].StartDate) {
			return periods[i].StartDate.After(periods[j].StartDate)
		}
		return periods[i].Name < periods[j].Name
	})
	return periods
}

// List returns every period, most recent first.
func (r *PeriodRepository) List(context.Context) ([]models.GradingPeriod, error) {
	return r.sorted(false), nil
}

// ListActive returns active periods, latest start date first.
func (r *PeriodRepository) ListActive(context.Context) ([]models.GradingPeriod, error) {
	return r.sorted(true), nil
}

// FindByID returns sql.ErrNoRows when the period does not exist.
func (r *PeriodRepository) FindByID(_ context.Context, id string) (*models.GradingPeriod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.periods[id]
	if !ok {
		return nil, notFound()
	}
	return &p, nil
}

// Create stores the period.
func (r *PeriodRepository) Create(_ context.Context, period *models.GradingPeriod) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	r.store.periods[period.ID] = *period
	return nil
}

// EvaluationTypeRepository is the in-memory evaluation type table.
type EvaluationTypeRepository struct{ store *Store }

// NewEvaluationTypeRepository binds an evaluation type repository to store.
func NewEvaluationTypeRepository(store *Store) *EvaluationTypeRepository {
	return &EvaluationTypeRepository{store: store}
}

// List returns evaluation types ordered by name.
func (r *EvaluationTypeRepository) List(context.Context) ([]models.EvaluationType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	types := make([]models.EvaluationType, 0, len(r.store.evaluationTypes))
	for _, et := range r.store.evaluationTypes {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

// FindByID returns sql.ErrNoRows when the evaluation type does not exist.
func (r *EvaluationTypeRepository) FindByID(_ context.Context, id string) (*models.EvaluationType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	et, ok := r.store.evaluationTypes[id]
	if !ok {
		return nil, notFound()
	}
	return &et, nil
}

// Create stores the evaluation type, enforcing name uniqueness.
func (r *EvaluationTypeRepository) Create(_ context.Context, evalType *models.EvaluationType) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, et := range r.store.evaluationTypes {
		if et.Name == evalType.Name {
			return repository.ErrDuplicateKey
		}
	}
	if evalType.ID == "" {
		evalType.ID = uuid.NewString()
	}
	evalType.CreatedAt = time.Now().UTC()
	r.store.evaluationTypes[evalType.ID] = *evalType
	return nil
}
