// Package catalog serves products, categories and product types, caching
// product reads when a cache is configured.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Service struct {
	db    *sql.DB
	cache Cache
}

func NewService(db *sql.DB, cache Cache) *Service {
	if cache == nil {
		cache = NoCache{}
	}
	return &Service{db: db, cache: cache}
}

func (s *Service) ListProducts(ctx context.Context, categoryID string, page, pageSize int) (*store.OffsetPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	key := fmt.Sprintf("products:%s:%d:%d", categoryID, page, pageSize)

	products := []models.Product{}
	cached := &store.OffsetPage{Items: &products}
	if s.cacheGet(ctx, key, cached) {
		cached.Items = products
		return cached, nil
	}

	result, err := store.ListProducts(ctx, s.db, categoryID, page, pageSize)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, result)
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	key := "product:" + id

	var cached models.Product
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := store.GetProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, product)
	return product, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return store.ListCategories(ctx, s.db)
}

func (s *Service) ProductTypes(ctx context.Context, categoryID string) ([]models.ProductType, error) {
	return store.ListProductTypes(ctx, s.db, categoryID)
}

func (s *Service) CreateProduct(ctx context.Context, params store.CreateProductParams) (*models.Product, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", database.ErrInvalidInput)
	}
	if params.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", database.ErrInvalidInput)
	}
	if params.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity must not be negative", database.ErrInvalidInput)
	}

	var product *models.Product
	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if params.CategoryID != "" {
			if _, err := store.GetCategory(ctx, tx, params.CategoryID); err != nil {
				return err
			}
		}

		var err error
		product, err = store.CreateProduct(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.InvalidateProducts(ctx); err != nil {
		log.WithError(err).Warn("invalidate catalog cache")
	}

	log.WithField("product_id", product.ID).Info("product created")
	return product, nil
}

// InvalidateProducts drops cached product reads after stock or product changes.
func (s *Service) InvalidateProducts(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// Cache failures degrade to database reads.
func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("catalog cache read")
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.WithField("key", key).WithError(err).Warn("catalog cache write")
	}
}
