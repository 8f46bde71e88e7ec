package database

import (
	"context"
	"fmt"

	"github.com/castillodev/storefront-scraper/internal/models"
)

// CategoryRepository persists discovered categories. Rows are unique on
// (provider, name) and are never deleted by the scraper.
type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetOrCreate upserts a category and returns its id. The insert and the
// conflict update happen in one statement, so concurrent upserts of the
// same (provider, name) pair are safe.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, providerKey, name, url string) (int64, error) {
	query := `
		INSERT INTO categories (provider, name, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, name) DO UPDATE SET
			url = EXCLUDED.url,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id`

	var id int64
	if err := r.db.pool.QueryRow(ctx, query, providerKey, name, url).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert category: %w", err)
	}

	return id, nil
}

// ListByProvider returns a provider's registered categories in name
// order.
func (r *CategoryRepository) ListByProvider(ctx context.Context, providerKey string) ([]models.Category, error) {
	query := `
		SELECT id, provider, name, url
		FROM categories
		WHERE provider = $1
		ORDER BY name`

	rows, err := r.db.pool.Query(ctx, query, providerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Provider, &c.Name, &c.URL); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}
