package repository

import (
	"context"
	"fmt"

	"booking-payments/internal/data/entity"
	"booking-payments/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ResourceRepository resolves bookable resources (events, venues, services)
// for existence and pricing. Catalog management is a separate system.
type ResourceRepository interface {
	FindByID(ctx context.Context, kind entity.BookingKind, id uuid.UUID) (*entity.Resource, error)
}

type resourceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewResourceRepository(db database.PgxIface, log *zap.Logger) ResourceRepository {
	return &resourceRepository{
		db:  db,
		log: log.With(zap.String("repository", "resource")),
	}
}

func (r *resourceRepository) FindByID(ctx context.Context, kind entity.BookingKind, id uuid.UUID) (*entity.Resource, error) {
	query := `
		SELECT id, kind, name, price, currency, active, created_at
		FROM resources
		WHERE id = $1 AND kind = $2
	`

	var res entity.Resource
	err := r.db.QueryRow(ctx, query, id, kind).Scan(
		&res.ID,
		&res.Kind,
		&res.Name,
		&res.Price,
		&res.Currency,
		&res.Active,
		&res.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find resource",
			zap.Error(err),
			zap.String("resource_id", id.String()),
			zap.String("kind", string(kind)),
		)
		return nil, fmt.Errorf("find %s resource %s: %w", string(kind), id.String(), err)
	}

	return &res, nil
}
