package handler

import (
	"strings"

	id "vaxcert/pkg/domain"
	dErrors "vaxcert/pkg/domain-errors"
)

// IssueRequest is the HTTP request body for POST /certificates and
// POST /certificates/preview.
type IssueRequest struct {
	SubjectID string `json:"subject_id"`

	// Parsed values (populated by Validate)
	parsedSubjectID id.SubjectID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.SubjectID = strings.TrimSpace(r.SubjectID)
	if r.SubjectID == "" {
		return dErrors.New(dErrors.CodeValidation, "subject_id is required")
	}

	subjectID, err := id.ParseSubjectID(r.SubjectID)
	if err != nil {
		return err
	}
	r.parsedSubjectID = subjectID
	return nil
}

// ParsedSubjectID returns the validated subject identifier.
func (r *IssueRequest) ParsedSubjectID() id.SubjectID {
	return r.parsedSubjectID
}

// VerifyRequest is the HTTP request body for POST /certificates/verify.
type VerifyRequest struct {
	Token string `json:"token"`
}

// Validate validates the request.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}
