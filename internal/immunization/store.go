// Package immunization provides read access to per-dose event records.
package immunization

import (
	"context"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// Store lists a subject's full dose history. Order is submission order as
// persisted; the eligibility rules do their own sorting, so stores must not
// reorder rows beyond their insertion sequence.
type Store interface {
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]domain.DoseEvent, error)
}
