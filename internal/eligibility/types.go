package eligibility

import (
	"vaxcert/internal/domain"
)

// Reason explains an ineligibility outcome. These are expected business
// outcomes, not faults; the transport layer reports them with 200-level
// semantics and enough detail for a caller to explain the gap.
type Reason string

const (
	ReasonNoCompletedDoses  Reason = "no_completed_doses"
	ReasonInsufficientDoses Reason = "insufficient_doses"
)

// DefaultRequiredDoses is the threshold assumed when the canonical product
// cannot be resolved in the catalog. An unknown product degrades the outcome,
// it never fails the pipeline.
const DefaultRequiredDoses = 2

// CertifiableSet is the positive outcome: the canonical product plus the exact
// ordered dose subset to certify. len(Doses) always equals the product's
// required dose count.
type CertifiableSet struct {
	Product domain.ProductCatalogEntry
	Doses   []domain.DoseEvent
}

// Ineligible is the negative outcome, carrying the counts the UI needs to
// explain what is missing.
type Ineligible struct {
	Reason Reason
	Have   int
	Need   int
}

// Outcome is the result of one evaluation. Exactly one of Set and Rejection is
// populated, discriminated by Eligible.
type Outcome struct {
	Eligible  bool
	Set       CertifiableSet
	Rejection Ineligible
}
