// Package catalog provides read access to the vaccine product catalog.
package catalog

import (
	"context"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// Store resolves catalog entries by product identifier. Implementations return
// sentinel.ErrNotFound for unknown products; callers treat that as a graceful
// degradation, never a pipeline failure.
type Store interface {
	FindByID(ctx context.Context, productID id.ProductID) (domain.ProductCatalogEntry, error)
}
