package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

// PostgresStore reads issuing facilities from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, facilityID id.FacilityID) (domain.IssuingFacility, error) {
	const query = `
		SELECT id, display_name, address, phone
		FROM issuing_facilities
		WHERE id = $1`

	var f domain.IssuingFacility
	var rawID string
	err := s.db.QueryRowContext(ctx, query, facilityID.String()).Scan(
		&rawID,
		&f.DisplayName,
		&f.Address,
		&f.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IssuingFacility{}, sentinel.ErrNotFound
		}
		return domain.IssuingFacility{}, fmt.Errorf("find facility by id: %w", err)
	}
	f.ID = id.FacilityID(rawID)
	return f, nil
}
