package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository/memory"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

func TestStudentServiceCreateAndConflict(t *testing.T) {
	svc := NewStudentService(memory.NewStudentRepository(memory.NewStore()), nil, nil, nil)
	ctx := context.Background()

	req := CreateStudentRequest{FirstName: " Ana ", LastName: "Diaz", NationalID: " 40111222 ", GradeLevel: "10", Section: "A"}
	student, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Ana", student.FirstName)
	assert.Equal(t, "40111222", student.NationalID)
	assert.True(t, student.Active)

	_, err = svc.Create(ctx, req)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Create(ctx, CreateStudentRequest{FirstName: "NoID"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceDeactivateAndPaging(t *testing.T) {
	svc := NewStudentService(memory.NewStudentRepository(memory.NewStore()), nil, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateStudentRequest{FirstName: "Ana", LastName: "Diaz", NationalID: "1", GradeLevel: "10", Section: "A"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, created.ID))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.True(t, errors.Is(svc.Deactivate(ctx, "missing"), appErrors.ErrNotFound))

	_, page, err := svc.List(ctx, models.StudentFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)
}
