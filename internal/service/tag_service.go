package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/internal/models"
	"github.com/pushkindt/pushkind-orders/internal/repository"
)

type TagListQuery struct {
	Query  string
	Limit  int
	Offset int
}

type TagService interface {
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListTags(ctx context.Context, q TagListQuery) ([]models.Tag, int64, error)
	RenameTag(ctx context.Context, id uuid.UUID, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
}

type tagService struct {
	repo *repository.Repository
}

func NewTagService(repo *repository.Repository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationf("name must not be blank")
	}
	existing, err := s.repo.Tags.GetByHubAndName(ctx, hubID, name)
	if err != nil {
		return nil, storage(err)
	}
	if existing != nil {
		return nil, ErrConflict
	}
	tag := &models.Tag{HubID: hubID, Name: name}
	if err := s.repo.Tags.Create(ctx, tag); err != nil {
		return nil, storage(err)
	}
	return tag, nil
}

func (s *tagService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := s.repo.Tags.GetByID(ctx, id, hubID)
	if err != nil {
		return nil, storage(err)
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

func (s *tagService) ListTags(ctx context.Context, q TagListQuery) ([]models.Tag, int64, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.Tags.List(ctx, repository.TagListFilter{
		HubID:  hubID,
		Query:  q.Query,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, 0, storage(err)
	}
	return rows, total, nil
}

func (s *tagService) RenameTag(ctx context.Context, id uuid.UUID, name string) (*models.Tag, error) {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationf("name must not be blank")
	}
	existing, err := s.repo.Tags.GetByHubAndName(ctx, hubID, name)
	if err != nil {
		return nil, storage(err)
	}
	if existing != nil && existing.ID != id {
		return nil, ErrConflict
	}
	n, err := s.repo.Tags.UpdateFields(ctx, id, hubID, map[string]any{"name": name})
	if err != nil {
		return nil, storage(err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTag(ctx, id)
}

func (s *tagService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	hubID, _, err := requireOperator(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Tags.Delete(ctx, id, hubID)
	if err != nil {
		return storage(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
