package database

import (
	"context"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

const (
	SelectProductsQuery = `
		SELECT
			id,
			name,
			type,
			description,
			price,
			image,
			unit
		FROM
			products
		ORDER BY
			id
	`
	SelectProductsByIDQuery = `
		SELECT
			id,
			name,
			type,
			description,
			price,
			image,
			unit
		FROM
			products
		WHERE
			id = ANY($1)
	`
)

func (d *Database) FindProducts(ctx context.Context) ([]models.Product, error) {
	return d.findProducts(ctx, SelectProductsQuery)
}

// FindProductsByID returns the known products among ids keyed by id.
func (d *Database) FindProductsByID(ctx context.Context, ids []string) (map[string]models.Product, error) {
	products, err := d.findProducts(ctx, SelectProductsByIDQuery, ids)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (d *Database) findProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Description, &p.Price, &p.Image, &p.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return result, nil
}
