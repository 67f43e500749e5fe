package db

import (
	"database/sql"
	"fmt"

	"github.com/clothstore/storefront/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

// GetAll returns all non-retired products, newest first.
func (r *ProductRepository) GetAll() ([]models.Product, error) {
	query := `
		SELECT id, name, description, price, category, size, color, stock_quantity, image_url, created_at
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.Size, &p.Color, &p.StockQuantity, &p.ImageURL, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// GetByID returns a single non-retired product, or nil when not found.
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	query := `
		SELECT id, name, description, price, category, size, color, stock_quantity, image_url, created_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`

	var p models.Product
	err := r.db.QueryRow(query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price,
		&p.Category, &p.Size, &p.Color, &p.StockQuantity, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

// Create inserts a new product. The image URL is an opaque reference issued
// by the external storage collaborator.
func (r *ProductRepository) Create(req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, category, size, color, stock_quantity, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, description, price, category, size, color, stock_quantity, image_url, created_at
	`

	var p models.Product
	err := r.db.QueryRow(query, req.Name, req.Description, req.Price, req.Category,
		req.Size, req.Color, req.StockQuantity, req.ImageURL).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.Size, &p.Color, &p.StockQuantity, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &p, nil
}

// Update replaces a non-retired product's fields, or returns nil when the
// product does not exist.
func (r *ProductRepository) Update(id int, req models.UpdateProductRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, size = $5, color = $6, stock_quantity = $7, image_url = $8
		WHERE id = $9 AND deleted_at IS NULL
		RETURNING id, name, description, price, category, size, color, stock_quantity, image_url, created_at
	`

	var p models.Product
	err := r.db.QueryRow(query, req.Name, req.Description, req.Price, req.Category,
		req.Size, req.Color, req.StockQuantity, req.ImageURL, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.Size, &p.Color, &p.StockQuantity, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &p, nil
}

// Retire marks a product as deleted. The row stays so existing orders keep
// resolving it by id; all reads exclude retired rows.
func (r *ProductRepository) Retire(id int) error {
	query := `UPDATE products SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to retire product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}
