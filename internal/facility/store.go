// Package facility provides read access to issuing facility records.
package facility

import (
	"context"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// Store resolves facilities by identifier. Unknown facilities return
// sentinel.ErrNotFound; the composer substitutes a generic label, so callers
// treat a miss as degradation rather than failure.
type Store interface {
	FindByID(ctx context.Context, facilityID id.FacilityID) (domain.IssuingFacility, error)
}
