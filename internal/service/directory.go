package service

import (
	"context"
	"strings"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/repository"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
	"github.com/DaniAlencarrr/Athletix/pkg/slug"
)

// DirectoryService lists onboarded coaches and athletes.
type DirectoryService struct {
	repo repository.DirectoryRepository
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(repo repository.DirectoryRepository) *DirectoryService {
	return &DirectoryService{repo: repo}
}

// List returns one page of accounts with role.
func (s *DirectoryService) List(ctx context.Context, role domain.Role, page pagination.Params) (*pagination.Result[domain.DirectoryEntry], error) {
	entries, total, err := s.repo.List(ctx, role, page)
	if err != nil {
		return nil, err
	}
	res := pagination.NewResult(entries, total, page)
	return &res, nil
}

// FindBySlug resolves a name slug such as "joao-pedro" to the first account
// with role whose name contains the words of the slug.
func (s *DirectoryService) FindBySlug(ctx context.Context, role domain.Role, nameSlug string) (*domain.DirectoryEntry, error) {
	phrase := strings.Join(slug.Terms(nameSlug), " ")
	if phrase == "" {
		return nil, apperrors.InvalidInput("name must contain at least one letter or digit")
	}
	return s.repo.FindByName(ctx, role, phrase)
}
