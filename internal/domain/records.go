// Package domain holds the immutable record types shared across the
// certificate engine. These are pure data contracts; behavior lives in the
// services that consume them.
package domain

import (
	"time"

	id "vaxcert/pkg/domain"
)

// Subject is the person a certificate may be issued to. The identifier is
// immutable once assigned; it seeds the certificate identifier.
type Subject struct {
	ID          id.SubjectID
	DisplayName string
	DateOfBirth time.Time
	Sex         string
	Locality    string
}

// DoseState is the completion state of a dose event. Only completed doses are
// certifiable.
type DoseState string

const (
	DoseScheduled DoseState = "scheduled"
	DoseCompleted DoseState = "completed"
	DoseCancelled DoseState = "cancelled"
)

// DoseEvent is one administration record for a subject. Sequence numbers are
// 1-based and are neither guaranteed sorted nor unique in storage; the
// evaluator sorts and truncates, it never assumes.
type DoseEvent struct {
	ID         id.DoseEventID
	SubjectID  id.SubjectID
	FacilityID id.FacilityID
	ProductID  id.ProductID
	Sequence   int
	State      DoseState
	Date       time.Time
}

// ProductCatalogEntry describes a vaccine product. RequiredDoses is the
// eligibility threshold for subjects whose completed doses reference it.
type ProductCatalogEntry struct {
	ID            id.ProductID
	DisplayName   string
	Manufacturer  string
	RequiredDoses int
	Available     bool
}

// IssuingFacility is the center that administered a dose. A dose may reference
// a facility the gateway cannot resolve; rendering falls back to a generic
// label in that case.
type IssuingFacility struct {
	ID          id.FacilityID
	DisplayName string
	Address     string
	Phone       string
}

// Certificate is the derived, transient issuance record. It is constructed per
// generation request, never mutated, and discarded once the sink has consumed
// it. Regenerating for the same subject produces a new identifier.
type Certificate struct {
	Identifier string
	Subject    Subject
	Product    ProductCatalogEntry
	Doses      []DoseEvent
	IssuedAt   time.Time
}
