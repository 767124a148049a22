// Package audit captures structured issuance events. Keep events
// transport-agnostic so stores and brokers can fan out.
package audit

import (
	"time"

	id "vaxcert/pkg/domain"
)

// Action enumerates the audited pipeline outcomes.
type Action string

const (
	ActionCertificateIssued   Action = "certificate_issued"
	ActionCertificateRejected Action = "certificate_rejected"
)

// Event is one audited pipeline outcome.
type Event struct {
	Timestamp     time.Time    `json:"timestamp"`
	Action        Action       `json:"action"`
	SubjectID     id.SubjectID `json:"subject_id"`
	CertificateID string       `json:"certificate_id,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	RequestID     string       `json:"request_id,omitempty"`
}
