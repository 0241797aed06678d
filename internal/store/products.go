package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/shopspring/decimal"
)

type CreateProductParams struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Dimensions    string
	CategoryID    string
	ProductTypeID string
	ImageURLs     []string
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock_quantity, p.dimensions,
	       p.category_id, COALESCE(c.name, ''), p.product_type_id, COALESCE(t.name, ''),
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN product_types t ON t.id = p.product_type_id`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.Dimensions,
		&p.CategoryID,
		&p.CategoryName,
		&p.ProductTypeID,
		&p.ProductTypeName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func CreateProduct(ctx context.Context, q database.Querier, params CreateProductParams) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (id, name, description, price, stock_quantity, dimensions,
		                      category_id, product_type_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, name, description, price, stock_quantity, dimensions,
		          category_id, product_type_id, created_at, updated_at`

	err := q.QueryRowContext(ctx, query,
		newID(), params.Name, params.Description, params.Price, params.StockQuantity,
		params.Dimensions, params.CategoryID, params.ProductTypeID,
	).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.Dimensions,
		&product.CategoryID,
		&product.ProductTypeID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	for i, url := range params.ImageURLs {
		img := models.ProductImage{ID: newID(), ProductID: product.ID, URL: url, Position: i}
		_, err := q.ExecContext(ctx,
			`INSERT INTO product_images (id, product_id, url, position) VALUES ($1, $2, $3, $4)`,
			img.ID, img.ProductID, img.URL, img.Position)
		if err != nil {
			return nil, fmt.Errorf("create product image: %w", err)
		}
		product.Images = append(product.Images, img)
	}

	return product, nil
}

// GetProduct returns a product with its category/type names and images.
func GetProduct(ctx context.Context, q database.Querier, id string) (*models.Product, error) {
	product, err := scanProduct(q.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	images, err := ListProductImages(ctx, q, []string{product.ID})
	if err != nil {
		return nil, err
	}
	product.Images = images[product.ID]

	return product, nil
}

// LockProduct reads the price and stock of a product and holds a row lock on
// it until the surrounding transaction ends.
func LockProduct(ctx context.Context, tx *sql.Tx, id string) (*models.Product, error) {
	product := &models.Product{ID: id}

	err := tx.QueryRowContext(ctx,
		`SELECT name, price, stock_quantity FROM products WHERE id = $1 FOR UPDATE`,
		id).Scan(&product.Name, &product.Price, &product.StockQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}

	return product, nil
}

// DecrementStock lowers stock by quantity in a single statement. It fails with
// ErrInsufficientStock rather than letting stock go negative, and with
// ErrProductNotFound when the product does not exist.
func DecrementStock(ctx context.Context, q database.Querier, productID string, quantity int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock_quantity >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err := q.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return database.ErrProductNotFound
		}
		return database.ErrInsufficientStock
	}

	return nil
}

func ListProducts(ctx context.Context, q database.Querier, categoryID string, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE ($1 = '' OR category_id = $1)`,
		categoryID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := productSelect + `
		WHERE ($1 = '' OR p.category_id = $1)
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3`

	rows, err := q.QueryContext(ctx, query, categoryID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	var ids []string
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
		ids = append(ids, product.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(ids) > 0 {
		images, err := ListProductImages(ctx, q, ids)
		if err != nil {
			return nil, err
		}
		for i := range products {
			products[i].Images = images[products[i].ID]
		}
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

// ListProductImages returns images grouped by product id, in display order.
func ListProductImages(ctx context.Context, q database.Querier, productIDs []string) (map[string][]models.ProductImage, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, product_id, url, position
		 FROM product_images
		 WHERE product_id = ANY($1)
		 ORDER BY product_id, position`,
		pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.ProductImage)
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		out[img.ProductID] = append(out[img.ProductID], img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}
