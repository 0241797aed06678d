package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
)

func CreateCategory(ctx context.Context, q database.Querier, name string) (*models.Category, error) {
	c := &models.Category{ID: newID(), Name: name}
	_, err := q.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func GetCategory(ctx context.Context, q database.Querier, id string) (*models.Category, error) {
	c := &models.Category{}
	err := q.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func ListCategories(ctx context.Context, q database.Querier) ([]models.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

func CreateProductType(ctx context.Context, q database.Querier, name, categoryID string) (*models.ProductType, error) {
	pt := &models.ProductType{ID: newID(), Name: name, CategoryID: categoryID}
	_, err := q.ExecContext(ctx,
		`INSERT INTO product_types (id, name, category_id) VALUES ($1, $2, $3)`,
		pt.ID, pt.Name, pt.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("create product type: %w", err)
	}
	return pt, nil
}

// ListProductTypes lists all product types, or those of one category when
// categoryID is set.
func ListProductTypes(ctx context.Context, q database.Querier, categoryID string) ([]models.ProductType, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, category_id
		 FROM product_types
		 WHERE ($1 = '' OR category_id = $1)
		 ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list product types: %w", err)
	}
	defer rows.Close()

	types := []models.ProductType{}
	for rows.Next() {
		var pt models.ProductType
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product type: %w", err)
		}
		types = append(types, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return types, nil
}
