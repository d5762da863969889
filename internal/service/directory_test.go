package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
)

func TestDirectoryService_List(t *testing.T) {
	repo := new(mockDirectoryRepository)
	page := pagination.Params{Page: 1, PerPage: 2}
	repo.On("List", mock.Anything, domain.RoleCoach, page).
		Return([]domain.DirectoryEntry{{ID: "c1"}, {ID: "c2"}}, 3, nil)

	res, err := NewDirectoryService(repo).List(context.Background(), domain.RoleCoach, page)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.TotalPages)
	assert.True(t, res.HasNext)
}

func TestDirectoryService_ListEmpty(t *testing.T) {
	repo := new(mockDirectoryRepository)
	page := pagination.Params{Page: 1, PerPage: 20}
	repo.On("List", mock.Anything, domain.RoleAthlete, page).Return(nil, 0, nil)

	res, err := NewDirectoryService(repo).List(context.Background(), domain.RoleAthlete, page)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestDirectoryService_FindBySlug(t *testing.T) {
	repo := new(mockDirectoryRepository)
	repo.On("FindByName", mock.Anything, domain.RoleCoach, "joao pedro").
		Return(&domain.DirectoryEntry{ID: "c1", Name: "João Pedro"}, nil)

	e, err := NewDirectoryService(repo).FindBySlug(context.Background(), domain.RoleCoach, "João-Pedro")
	require.NoError(t, err)
	assert.Equal(t, "c1", e.ID)
}

func TestDirectoryService_FindBySlug_Blank(t *testing.T) {
	repo := new(mockDirectoryRepository)

	_, err := NewDirectoryService(repo).FindBySlug(context.Background(), domain.RoleCoach, "---")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything, mock.Anything)
}
