//go:build integration

package immunization_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcert/internal/domain"
	"vaxcert/internal/immunization"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/testutil/containers"
)

const doseEventsSchema = `
CREATE TABLE dose_events (
	id           TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	facility_id  TEXT,
	product_id   TEXT NOT NULL,
	sequence     INT NOT NULL,
	state        TEXT NOT NULL,
	event_date   TIMESTAMPTZ NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX dose_events_subject_idx ON dose_events (subject_id, submitted_at, id);
`

func TestPostgresStore_ListBySubject(t *testing.T) {
	pg := containers.NewPostgresContainer(t, doseEventsSchema)
	store := immunization.NewPostgres(pg.DB)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	insert := func(eventID, subjectID, facilityID, productID string, sequence int, state string, submittedAt time.Time) {
		t.Helper()
		var facility any
		if facilityID != "" {
			facility = facilityID
		}
		_, err := pg.DB.ExecContext(ctx, `
			INSERT INTO dose_events (id, subject_id, facility_id, product_id, sequence, state, event_date, submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			eventID, subjectID, facility, productID, sequence, state, base, submittedAt)
		require.NoError(t, err)
	}

	// Submitted out of sequence order on purpose.
	insert("d2", "42", "fac-1", "prod-alpha", 2, "completed", base.Add(2*time.Minute))
	insert("d1", "42", "", "prod-alpha", 1, "completed", base.Add(1*time.Minute))
	insert("dx", "99", "fac-1", "prod-alpha", 1, "completed", base)

	events, err := store.ListBySubject(ctx, id.SubjectID("42"))
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Rows come back in submission order.
	assert.Equal(t, id.DoseEventID("d1"), events[0].ID)
	assert.Equal(t, id.DoseEventID("d2"), events[1].ID)

	assert.True(t, events[0].FacilityID.IsNil())
	assert.Equal(t, id.FacilityID("fac-1"), events[1].FacilityID)
	assert.Equal(t, domain.DoseCompleted, events[0].State)

	none, err := store.ListBySubject(ctx, id.SubjectID("nobody"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
