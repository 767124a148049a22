package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

// PostgresStore reads catalog entries from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, productID id.ProductID) (domain.ProductCatalogEntry, error) {
	const query = `
		SELECT id, display_name, manufacturer, required_doses, available
		FROM product_catalog
		WHERE id = $1`

	var entry domain.ProductCatalogEntry
	var rawID string
	err := s.db.QueryRowContext(ctx, query, productID.String()).Scan(
		&rawID,
		&entry.DisplayName,
		&entry.Manufacturer,
		&entry.RequiredDoses,
		&entry.Available,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductCatalogEntry{}, sentinel.ErrNotFound
		}
		return domain.ProductCatalogEntry{}, fmt.Errorf("find catalog entry: %w", err)
	}
	entry.ID = id.ProductID(rawID)
	return entry, nil
}
