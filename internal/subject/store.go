// Package subject provides read access to subject records. The gateway never
// writes subjects; they are owned by the upstream registration system.
package subject

import (
	"context"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// Store resolves subjects by identifier. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown subjects.
type Store interface {
	FindByID(ctx context.Context, subjectID id.SubjectID) (domain.Subject, error)
}
