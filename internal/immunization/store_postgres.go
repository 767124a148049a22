package immunization

import (
	"context"
	"database/sql"
	"fmt"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// PostgresStore reads dose events from PostgreSQL. Rows come back in
// insertion order (submitted_at, id) so the evaluator's first-completed rule
// sees the same order the events arrived in.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]domain.DoseEvent, error) {
	const query = `
		SELECT id, subject_id, facility_id, product_id, sequence, state, event_date
		FROM dose_events
		WHERE subject_id = $1
		ORDER BY submitted_at, id`

	rows, err := s.db.QueryContext(ctx, query, subjectID.String())
	if err != nil {
		return nil, fmt.Errorf("list dose events: %w", err)
	}
	defer rows.Close()

	var events []domain.DoseEvent
	for rows.Next() {
		var e domain.DoseEvent
		var eventID, subject, product, state string
		var facility sql.NullString
		if err := rows.Scan(&eventID, &subject, &facility, &product, &e.Sequence, &state, &e.Date); err != nil {
			return nil, fmt.Errorf("scan dose event: %w", err)
		}
		e.ID = id.DoseEventID(eventID)
		e.SubjectID = id.SubjectID(subject)
		e.ProductID = id.ProductID(product)
		e.State = domain.DoseState(state)
		if facility.Valid {
			e.FacilityID = id.FacilityID(facility.String)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dose events: %w", err)
	}
	return events, nil
}
