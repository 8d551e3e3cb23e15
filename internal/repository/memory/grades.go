package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
)

// GradeEntryRepository is the in-memory grade entry table.
type GradeEntryRepository struct{ store *Store }

// NewGradeEntryRepository binds a grade entry repository to store.
func NewGradeEntryRepository(store *Store) *GradeEntryRepository {
	return &GradeEntryRepository{store: store}
}

// Upsert inserts the entry or overwrites score, teacher and notes on its natural key.
func (r *GradeEntryRepository) Upsert(_ context.Context, entry *models.GradeEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now().UTC()
	key := keyOf(*entry)
	if existing, ok := r.store.grades[key]; ok {
		existing.Score = entry.Score
		existing.TeacherID = entry.TeacherID
		existing.Notes = entry.Notes
		existing.UpdatedAt = now
		r.store.grades[key] = existing
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	stored := *entry
	stored.SubjectName = ""
	r.store.grades[key] = stored
	return nil
}

// FindByKey returns the entry stored under the natural key of entry.
func (r *GradeEntryRepository) FindByKey(_ context.Context, entry models.GradeEntry) (*models.GradeEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stored, ok := r.store.grades[keyOf(entry)]
	if !ok {
		return nil, notFound()
	}
	return &stored, nil
}

// List returns the student's entries ordered by subject name then evaluation date.
func (r *GradeEntryRepository) List(_ context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := make([]models.GradeEntry, 0)
	for _, g := range r.store.grades {
		if g.StudentID != filter.StudentID {
			continue
		}
		if filter.PeriodID != "" && g.PeriodID != filter.PeriodID {
			continue
		}
		g.SubjectName = r.store.subjects[g.SubjectID].Name
		entries = append(entries, g)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		if !a.EvaluatedOn.Equal(b.EvaluatedOn) {
			return a.EvaluatedOn.Before(b.EvaluatedOn)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return entries, nil
}

// SubjectAverageRepository is the in-memory subject average table.
type SubjectAverageRepository struct{ store *Store }

// NewSubjectAverageRepository binds an average repository to store.
func NewSubjectAverageRepository(store *Store) *SubjectAverageRepository {
	return &SubjectAverageRepository{store: store}
}

// Compute returns the raw mean and count of entries matching key.
func (r *SubjectAverageRepository) Compute(_ context.Context, key models.AverageKey) (*models.SubjectAverage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	avg := models.SubjectAverage{StudentID: key.StudentID, SubjectID: key.SubjectID, PeriodID: key.PeriodID}
	var sum float64
	for _, g := range r.store.grades {
		if g.StudentID == key.StudentID && g.SubjectID == key.SubjectID && g.PeriodID == key.PeriodID {
			sum += g.Score
			avg.GradeCount++
		}
	}
	if avg.GradeCount > 0 {
		avg.Average = sum / float64(avg.GradeCount)
	}
	return &avg, nil
}

// Aggregate groups every entry by (student, subject, period).
func (r *SubjectAverageRepository) Aggregate(context.Context) ([]models.SubjectAverage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sums := make(map[models.AverageKey]float64)
	counts := make(map[models.AverageKey]int)
	for _, g := range r.store.grades {
		k := models.AverageKey{StudentID: g.StudentID, SubjectID: g.SubjectID, PeriodID: g.PeriodID}
		sums[k] += g.Score
		counts[k]++
	}
	rows := make([]models.SubjectAverage, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, models.SubjectAverage{
			StudentID:  k.StudentID,
			SubjectID:  k.SubjectID,
			PeriodID:   k.PeriodID,
			Average:    sums[k] / float64(n),
			GradeCount: n,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.PeriodID < b.PeriodID
	})
	return rows, nil
}

// Upsert stores one average row.
func (r *SubjectAverageRepository) Upsert(_ context.Context, avg *models.SubjectAverage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.averagesMissing {
		return repository.ErrAverageTableMissing
	}
	if avg.UpdatedAt.IsZero() {
		avg.UpdatedAt = time.Now().UTC()
	}
	row := *avg
	row.SubjectName = ""
	row.Category = ""
	row.Cached = false
	r.store.averages[avg.Key()] = row
	return nil
}

// Delete removes the row for key.
func (r *SubjectAverageRepository) Delete(_ context.Context, key models.AverageKey) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.averagesMissing {
		return repository.ErrAverageTableMissing
	}
	delete(r.store.averages, key)
	return nil
}

// ReplaceAll swaps the table content for rows atomically.
func (r *SubjectAverageRepository) ReplaceAll(_ context.Context, rows []models.SubjectAverage) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.averagesMissing {
		return 0, repository.ErrAverageTableMissing
	}
	now := time.Now().UTC()
	next := make(map[models.AverageKey]models.SubjectAverage, len(rows))
	for _, row := range rows {
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
		next[row.Key()] = row
	}
	r.store.averages = next
	return len(rows), nil
}

// ListByStudent returns the student's averages in period ordered by subject name.
func (r *SubjectAverageRepository) ListByStudent(_ context.Context, studentID, periodID string) ([]models.SubjectAverage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.averagesMissing {
		return nil, repository.ErrAverageTableMissing
	}
	rows := make([]models.SubjectAverage, 0)
	for _, avg := range r.store.averages {
		if avg.StudentID == studentID && avg.PeriodID == periodID {
			avg.SubjectName = r.store.subjects[avg.SubjectID].Name
			rows = append(rows, avg)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SubjectName != rows[j].SubjectName {
			return rows[i].SubjectName < rows[j].SubjectName
		}
		return rows[i].SubjectID < rows[j].SubjectID
	})
	return rows, nil
}

// GeneralAverages returns mean-of-means per active student in period, lowest first.
func (r *SubjectAverageRepository) GeneralAverages(_ context.Context, periodID string) ([]models.StudentGeneralAverage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.averagesMissing {
		return nil, repository.ErrAverageTableMissing
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, avg := range r.store.averages {
		if avg.PeriodID != periodID {
			continue
		}
		st, ok := r.store.students[avg.StudentID]
		if !ok || !st.Active {
			continue
		}
		sums[avg.StudentID] += avg.Average
		counts[avg.StudentID]++
	}
	rows := make([]models.StudentGeneralAverage, 0, len(counts))
	for id, n := range counts {
		st := r.store.students[id]
		rows = append(rows, models.StudentGeneralAverage{
			StudentID:      id,
			FirstName:      st.FirstName,
			LastName:       st.LastName,
			GradeLevel:     st.GradeLevel,
			Section:        st.Section,
			PeriodID:       periodID,
			GeneralAverage: sums[id] / float64(n),
			SubjectCount:   n,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.GeneralAverage != b.GeneralAverage {
			return a.GeneralAverage < b.GeneralAverage
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return rows, nil
}
