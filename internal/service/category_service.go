package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

type CreateCategoryInput struct {
	Name        string
	Description *string
	ParentID    *uuid.UUID
}

type UpdateCategoryInput struct {
	Name *string

	Description      *string
	ClearDescription bool

	ParentID    *uuid.UUID
	ClearParent bool

	IsArchived *bool
}

type CategoryService interface {
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// ListCategories returns the whole tree of the hub, ordered by name.
	ListCategories(ctx context.Context, includeArchived bool) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo *repository.Repository
}

func NewCategoryService(repo *repository.Repository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("name must not be blank")
	}
	if in.ParentID != nil {
		parent, err := s.repo.Categories.GetByID(ctx, *in.ParentID, hubID)
		if err != nil {
			return nil, storage(err)
		}
		if parent == nil {
			return nil, ErrNotFound
		}
	}
	category := &models.Category{
		HubID:       hubID,
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
	}
	if err := s.repo.Categories.Create(ctx, category); err != nil {
		return nil, storage(err)
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.Categories.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, includeArchived bool) ([]models.Category, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Categories.ListByHub(ctx, hubID, includeArchived)
	if err != nil {
		return nil, storage(err)
	}
	return rows, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.Categories.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationf("name must not be blank")
		}
		fields["name"] = *in.Name
	}
	switch {
	case in.ClearDescription:
		fields["description"] = nil
	case in.Description != nil:
		fields["description"] = *in.Description
	}
	switch {
	case in.ClearParent:
		fields["parent_id"] = nil
	case in.ParentID != nil:
		if *in.ParentID == id {
			return nil, ErrCategoryCycle
		}
		parent, err := s.repo.Categories.GetByID(ctx, *in.ParentID, hubID)
		if err != nil {
			return nil, storage(err)
		}
		if parent == nil {
			return nil, ErrNotFound
		}
		if err := s.checkNoCycle(ctx, hubID, id, *in.ParentID); err != nil {
			return nil, err
		}
		fields["parent_id"] = *in.ParentID
	}
	if in.IsArchived != nil {
		fields["is_archived"] = *in.IsArchived
	}

	if len(fields) > 0 {
		if _, err := s.repo.Categories.UpdateFields(ctx, id, hubID, fields); err != nil {
			return nil, storage(err)
		}
	}
	updated, err := s.repo.Categories.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	return updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Categories.Delete(ctx, id, hubID)
	if err != nil {
		return storage(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// checkNoCycle walks up the ancestor chain from the proposed parent; hitting
// the category itself means the re-parenting would close a loop.
func (s *categoryService) checkNoCycle(ctx context.Context, hubID, categoryID, parentID uuid.UUID) error {
	all, err := s.repo.Categories.ListByHub(ctx, hubID, true)
	if err != nil {
		return storage(err)
	}
	parents := make(map[uuid.UUID]*uuid.UUID, len(all))
	for _, c := range all {
		parents[c.ID] = c.ParentID
	}
	cur := &parentID
	for steps := 0; cur != nil && steps <= len(all); steps++ {
		if *cur == categoryID {
			return ErrCategoryCycle
		}
		cur = parents[*cur]
	}
	return nil
}
