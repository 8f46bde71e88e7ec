package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/castillodev/storefront-scraper/internal/models"
)

// SnapshotRepository persists scraped product snapshots. The table is
// append-only: re-scraping a product inserts a new row and prior rows
// are kept as history.
type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// InsertWithTx appends a snapshot within an existing transaction and
// fills in its assigned id.
func (r *SnapshotRepository) InsertWithTx(ctx context.Context, tx pgx.Tx, snap *models.Snapshot) error {
	payload, err := json.Marshal(snap.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	query := `
		INSERT INTO scraped_products (provider, provider_sku, category_id, fetched_at, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		snap.Provider, snap.SKU, snap.CategoryID, snap.FetchedAt, payload,
	).Scan(&snap.ID)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Append appends a snapshot in its own transaction.
func (r *SnapshotRepository) Append(ctx context.Context, snap *models.Snapshot) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		return r.InsertWithTx(ctx, tx, snap)
	})
}

// ListByProvider returns a provider's snapshots, newest first,
// optionally filtered by category.
func (r *SnapshotRepository) ListByProvider(ctx context.Context, providerKey string, categoryID int64) ([]models.Snapshot, error) {
	query := `
		SELECT id, provider, provider_sku, category_id, fetched_at, data
		FROM scraped_products
		WHERE provider = $1`
	args := []interface{}{providerKey}

	if categoryID > 0 {
		query += ` AND category_id = $2`
		args = append(args, categoryID)
	}
	query += ` ORDER BY fetched_at DESC, id DESC`

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var payload []byte
		if err := rows.Scan(&snap.ID, &snap.Provider, &snap.SKU, &snap.CategoryID, &snap.FetchedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal(payload, &snap.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshots, nil
}
