package domain

import (
	"strings"

	dErrors "vaxcert/pkg/domain-errors"
)

// Typed identifiers for the engine's records. Keeping them as distinct types
// prevents cross-record assignment at compile time; keeping them as strings
// matches the upstream registries, which issue opaque short identifiers rather
// than UUIDs.
type (
	SubjectID   string
	ProductID   string
	FacilityID  string
	DoseEventID string
)

const maxIDLength = 64

func parseID(raw, field string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" must not be empty")
	}
	if len(trimmed) > maxIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" exceeds maximum length")
	}
	for _, r := range trimmed {
		if !isIDRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, field+" contains invalid characters")
		}
	}
	return trimmed, nil
}

func isIDRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}

// ParseSubjectID validates an incoming subject identifier at a trust boundary.
func ParseSubjectID(raw string) (SubjectID, error) {
	s, err := parseID(raw, "subject_id")
	if err != nil {
		return "", err
	}
	return SubjectID(s), nil
}

// ParseProductID validates an incoming product identifier.
func ParseProductID(raw string) (ProductID, error) {
	s, err := parseID(raw, "product_id")
	if err != nil {
		return "", err
	}
	return ProductID(s), nil
}

// ParseFacilityID validates an incoming facility identifier.
func ParseFacilityID(raw string) (FacilityID, error) {
	s, err := parseID(raw, "facility_id")
	if err != nil {
		return "", err
	}
	return FacilityID(s), nil
}

// ParseDoseEventID validates an incoming dose event identifier.
func ParseDoseEventID(raw string) (DoseEventID, error) {
	s, err := parseID(raw, "dose_event_id")
	if err != nil {
		return "", err
	}
	return DoseEventID(s), nil
}

func (id SubjectID) String() string   { return string(id) }
func (id ProductID) String() string   { return string(id) }
func (id FacilityID) String() string  { return string(id) }
func (id DoseEventID) String() string { return string(id) }

func (id SubjectID) IsNil() bool   { return id == "" }
func (id ProductID) IsNil() bool   { return id == "" }
func (id FacilityID) IsNil() bool  { return id == "" }
func (id DoseEventID) IsNil() bool { return id == "" }
