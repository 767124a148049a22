package eligibility

import (
	"sort"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// Evaluate decides whether a dose history meets the completion threshold and
// selects the canonical dose subset to certify.
// This is pure domain logic - no I/O, no side effects.
//
// Rule chain:
//  1. Only completed doses count; an empty filtered set is ineligible.
//  2. The canonical product is the one referenced by the first completed dose
//     in submission order (not by date). An unresolved product falls back to
//     DefaultRequiredDoses instead of failing.
//  3. Fewer completed doses than required is ineligible, with counts.
//  4. Completed doses are stable-sorted ascending by sequence number and
//     truncated to exactly the required count. Duplicate sequence numbers are
//     legal; the stable sort keeps the earlier-submitted one when truncation
//     must drop a duplicate.
func Evaluate(doses []domain.DoseEvent, lookup func(id.ProductID) (domain.ProductCatalogEntry, bool)) Outcome {
	completed := make([]domain.DoseEvent, 0, len(doses))
	for _, d := range doses {
		if d.State == domain.DoseCompleted {
			completed = append(completed, d)
		}
	}
	if len(completed) == 0 {
		return Outcome{Rejection: Ineligible{Reason: ReasonNoCompletedDoses}}
	}

	product := canonicalProduct(completed[0].ProductID, lookup)

	if len(completed) < product.RequiredDoses {
		return Outcome{Rejection: Ineligible{
			Reason: ReasonInsufficientDoses,
			Have:   len(completed),
			Need:   product.RequiredDoses,
		}}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Sequence < completed[j].Sequence
	})

	return Outcome{
		Eligible: true,
		Set: CertifiableSet{
			Product: product,
			Doses:   completed[:product.RequiredDoses],
		},
	}
}

// CanonicalProductID returns the product referenced by the first completed
// dose in submission order, which is the product the certificate is issued
// against. ok is false when no dose is completed.
func CanonicalProductID(doses []domain.DoseEvent) (id.ProductID, bool) {
	for _, d := range doses {
		if d.State == domain.DoseCompleted {
			return d.ProductID, true
		}
	}
	return "", false
}

// canonicalProduct resolves the product for the certificate, synthesizing a
// fallback entry with the default threshold when the catalog has no match.
func canonicalProduct(productID id.ProductID, lookup func(id.ProductID) (domain.ProductCatalogEntry, bool)) domain.ProductCatalogEntry {
	if lookup != nil {
		if entry, ok := lookup(productID); ok && entry.RequiredDoses >= 1 {
			return entry
		}
	}
	return domain.ProductCatalogEntry{
		ID:            productID,
		DisplayName:   "Unregistered Vaccine",
		RequiredDoses: DefaultRequiredDoses,
	}
}
