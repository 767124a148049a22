package handler

import (
	"time"

	"vaxcert/internal/certificate"
	"vaxcert/internal/verify"
)

// IssueResponse is the HTTP response for POST /certificates and
// POST /certificates/preview. Eligible discriminates the two shapes.
type IssueResponse struct {
	Eligible bool `json:"eligible"`

	// Populated when ineligible
	Reason string `json:"reason,omitempty"`
	Have   *int   `json:"have,omitempty"`
	Need   *int   `json:"need,omitempty"`

	// Populated when issued
	CertificateID     string            `json:"certificate_id,omitempty"`
	Document          *DocumentResponse `json:"document,omitempty"`
	VerificationToken string            `json:"verification_token,omitempty"`
	IssuedAt          *time.Time        `json:"issued_at,omitempty"`
}

// DocumentResponse describes the materialized document handle. Path is set
// for durable artifacts, HTML for inline previews.
type DocumentResponse struct {
	Path string `json:"path,omitempty"`
	HTML string `json:"html,omitempty"`
}

// FromResult converts a pipeline result to an HTTP response.
func FromResult(result *certificate.Result) *IssueResponse {
	if !result.Eligible {
		resp := &IssueResponse{Reason: string(result.Rejection.Reason)}
		if result.Rejection.Reason != "" && result.Rejection.Need > 0 {
			have, need := result.Rejection.Have, result.Rejection.Need
			resp.Have = &have
			resp.Need = &need
		}
		return resp
	}

	issuedAt := result.IssuedAt
	return &IssueResponse{
		Eligible:      true,
		CertificateID: result.Identifier,
		Document: &DocumentResponse{
			Path: result.Handle.Path,
			HTML: string(result.Handle.Content),
		},
		VerificationToken: result.Token,
		IssuedAt:          &issuedAt,
	}
}

// VerifyResponse is the HTTP response for POST /certificates/verify.
type VerifyResponse struct {
	Valid         bool   `json:"valid"`
	CertificateID string `json:"certificate_id"`
	SubjectID     string `json:"subject_id"`
	Digest        string `json:"digest"`
}

// FromClaims converts verified token claims to an HTTP response.
func FromClaims(claims verify.Claims) *VerifyResponse {
	return &VerifyResponse{
		Valid:         true,
		CertificateID: claims.CertificateID,
		SubjectID:     claims.SubjectID,
		Digest:        claims.Digest,
	}
}
