package services

import (
	"context"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

type CatalogService struct {
	storage catalogStorage
}

type catalogStorage interface {
	FindProducts(ctx context.Context) ([]models.Product, error)
}

func NewCatalogService(storage catalogStorage) *CatalogService {
	return &CatalogService{storage: storage}
}

func (c *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.storage.FindProducts(ctx)
}
