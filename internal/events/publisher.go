package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/castillodev/storefront-scraper/internal/database"
	"github.com/castillodev/storefront-scraper/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventTypeSnapshotCreated is published for every appended snapshot.
	EventTypeSnapshotCreated EventType = "SNAPSHOT_CREATED"
)

// SnapshotCreatedPayload is the event body the catalog publisher
// consumes from the stream.
type SnapshotCreatedPayload struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	SnapshotID  int64     `json:"snapshot_id"`
	Provider    string    `json:"provider"`
	SKU         string    `json:"sku"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Variants    []string  `json:"variants"`
	Images      []string  `json:"images"`
	Source      string    `json:"source"`
}

// Publisher appends snapshots and their outbox events in one
// transaction, so a snapshot row and its SNAPSHOT_CREATED event either
// both exist or neither does. It is the scraper's SnapshotWriter.
type Publisher struct {
	db        *database.DB
	snapshots *database.SnapshotRepository
	outbox    *database.OutboxRepository
	logger    *slog.Logger
}

func NewPublisher(db *database.DB, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:        db,
		snapshots: database.NewSnapshotRepository(db),
		outbox:    database.NewOutboxRepository(db),
		logger:    logger.With("component", "event_publisher"),
	}
}

// Append writes the snapshot row and queues its event.
func (p *Publisher) Append(ctx context.Context, snap *models.Snapshot) error {
	err := p.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := p.snapshots.InsertWithTx(ctx, tx, snap); err != nil {
			return err
		}

		event, err := buildSnapshotEvent(snap)
		if err != nil {
			return err
		}

		return p.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	p.logger.Info("snapshot appended",
		"provider", snap.Provider,
		"sku", snap.SKU,
		"category_id", snap.CategoryID,
		"snapshot_id", snap.ID)

	return nil
}

// buildSnapshotEvent assembles the outbox event for an already-inserted
// snapshot. The snapshot's assigned id must be filled in.
func buildSnapshotEvent(snap *models.Snapshot) (*database.OutboxEvent, error) {
	payload := SnapshotCreatedPayload{
		EventID:     uuid.New().String(),
		EventType:   string(EventTypeSnapshotCreated),
		Timestamp:   snap.FetchedAt,
		SnapshotID:  snap.ID,
		Provider:    snap.Provider,
		SKU:         snap.SKU,
		CategoryID:  snap.CategoryID,
		Name:        snap.Payload.Name,
		Description: snap.Payload.Description,
		Variants:    snap.Payload.Variants,
		Images:      snap.Payload.Images,
		Source:      "scraper",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &database.OutboxEvent{
		AggregateType: "snapshot",
		AggregateID:   fmt.Sprintf("%s/%s", snap.Provider, snap.SKU),
		EventType:     string(EventTypeSnapshotCreated),
		Payload:       data,
	}, nil
}
