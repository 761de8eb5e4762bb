package service

import (
	"context"
	"fmt"
	"strings"

	"posledger/internal/model"
	"posledger/internal/repository"
)

type CreateStoreRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type StoreService interface {
	CreateStore(ctx context.Context, req CreateStoreRequest) (model.Store, error)
	DeleteStore(ctx context.Context, id int64) error
	ListStores(ctx context.Context) []model.Store
}

type storeService struct {
	repo repository.StoreRepository
}

func NewStoreService(repo repository.StoreRepository) StoreService {
	return &storeService{repo: repo}
}

func (s *storeService) CreateStore(ctx context.Context, req CreateStoreRequest) (model.Store, error) {
	if err := validateStruct(req); err != nil {
		return model.Store{}, err
	}
	store := model.Store{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if store.Name == "" {
		return model.Store{}, newValidationError("name", "name is required")
	}
	if err := s.repo.Create(ctx, &store); err != nil {
		return model.Store{}, fmt.Errorf("store %q: %w", store.Name, err)
	}
	return store, nil
}

func (s *storeService) DeleteStore(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("store %d: %w", id, err)
	}
	return nil
}

func (s *storeService) ListStores(ctx context.Context) []model.Store {
	return s.repo.List(ctx)
}
