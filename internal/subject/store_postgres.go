package subject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

// PostgresStore reads subjects from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID) (domain.Subject, error) {
	const query = `
		SELECT id, display_name, date_of_birth, sex, locality
		FROM subjects
		WHERE id = $1`

	var subject domain.Subject
	var rawID string
	err := s.db.QueryRowContext(ctx, query, subjectID.String()).Scan(
		&rawID,
		&subject.DisplayName,
		&subject.DateOfBirth,
		&subject.Sex,
		&subject.Locality,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subject{}, sentinel.ErrNotFound
		}
		return domain.Subject{}, fmt.Errorf("find subject by id: %w", err)
	}
	subject.ID = id.SubjectID(rawID)
	return subject, nil
}
