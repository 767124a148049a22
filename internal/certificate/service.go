// Package certificate orchestrates the issuance pipeline: gather records,
// evaluate eligibility, derive the identifier, compose the document, and hand
// it to a sink. The pipeline is synchronous and holds no state between
// requests; concurrent requests for the same subject legitimately produce two
// certificates with two identifiers.
package certificate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vaxcert/internal/audit"
	"vaxcert/internal/catalog"
	"vaxcert/internal/certificate/metrics"
	"vaxcert/internal/compose"
	"vaxcert/internal/domain"
	"vaxcert/internal/eligibility"
	"vaxcert/internal/facility"
	"vaxcert/internal/immunization"
	"vaxcert/internal/sink"
	"vaxcert/internal/subject"
	"vaxcert/internal/verify"
	id "vaxcert/pkg/domain"
	dErrors "vaxcert/pkg/domain-errors"
	"vaxcert/pkg/platform/sentinel"
	"vaxcert/pkg/requestcontext"
)

const gatherTimeout = 5 * time.Second

// Mode names the sink variant a request runs with.
type Mode string

const (
	ModeFile    Mode = "file"
	ModePreview Mode = "preview"
)

// Result is the outcome of one pipeline run. Eligible discriminates: when
// false only Rejection is populated; when true the issuance fields are set.
type Result struct {
	Eligible  bool
	Rejection eligibility.Ineligible

	Identifier string
	Handle     sink.Handle
	Token      string
	IssuedAt   time.Time
}

// Service wires the pipeline's collaborators.
type Service struct {
	subjects    subject.Store
	doses       immunization.Store
	catalog     catalog.Store
	facilities  facility.Store
	fileSink    sink.Sink
	previewSink sink.Sink
	signer      *verify.Signer
	audit       audit.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// Config groups the service dependencies so construction sites stay readable.
type Config struct {
	Subjects    subject.Store
	Doses       immunization.Store
	Catalog     catalog.Store
	Facilities  facility.Store
	FileSink    sink.Sink
	PreviewSink sink.Sink
	Signer      *verify.Signer
	Audit       audit.Publisher
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

func NewService(cfg Config) *Service {
	return &Service{
		subjects:    cfg.Subjects,
		doses:       cfg.Doses,
		catalog:     cfg.Catalog,
		facilities:  cfg.Facilities,
		fileSink:    cfg.FileSink,
		previewSink: cfg.PreviewSink,
		signer:      cfg.Signer,
		audit:       cfg.Audit,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		tracer:      otel.Tracer("vaxcert/certificate"),
	}
}

// Issue runs the pipeline and materializes to durable storage.
func (s *Service) Issue(ctx context.Context, subjectID id.SubjectID) (*Result, error) {
	return s.run(ctx, subjectID, ModeFile, s.fileSink)
}

// Preview runs the pipeline and returns an in-memory handle; nothing is
// persisted and no audit event is emitted.
func (s *Service) Preview(ctx context.Context, subjectID id.SubjectID) (*Result, error) {
	return s.run(ctx, subjectID, ModePreview, s.previewSink)
}

func (s *Service) run(ctx context.Context, subjectID id.SubjectID, mode Mode, out sink.Sink) (*Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "certificate.pipeline",
		trace.WithAttributes(
			attribute.String("subject.id", subjectID.String()),
			attribute.String("pipeline.mode", string(mode)),
		))
	defer span.End()
	defer func() { s.metrics.ObservePipelineLatency(time.Since(start)) }()

	subj, doses, err := s.gatherRecords(ctx, subjectID)
	if err != nil {
		s.metrics.IncrementOutcome("failed", string(mode))
		return nil, err
	}

	lookup, err := s.catalogLookup(ctx, doses)
	if err != nil {
		s.metrics.IncrementOutcome("failed", string(mode))
		return nil, err
	}

	outcome := eligibility.Evaluate(doses, lookup)
	if !outcome.Eligible {
		s.metrics.IncrementOutcome("ineligible", string(mode))
		if mode == ModeFile {
			s.emitAudit(ctx, audit.Event{
				Action:    audit.ActionCertificateRejected,
				SubjectID: subjectID,
				Reason:    string(outcome.Rejection.Reason),
				RequestID: requestcontext.RequestID(ctx),
			})
		}
		return &Result{Rejection: outcome.Rejection}, nil
	}

	issuedAt := requestcontext.Now(ctx)
	identifier := NewIdentifier(subjectID, issuedAt)

	doc := compose.Compose(compose.Input{
		Subject:    subj,
		Set:        outcome.Set,
		Facilities: s.resolveFacilities(ctx, outcome.Set.Doses),
		Identifier: identifier,
		IssuedAt:   issuedAt,
	})

	token, err := s.signer.Issue(identifier, subjectID, doc, issuedAt)
	if err != nil {
		s.metrics.IncrementOutcome("failed", string(mode))
		return nil, dErrors.Wrap(dErrors.CodeInternal, "sign verification token", err)
	}

	handle, err := out.Materialize(ctx, doc)
	if err != nil {
		// Surfaced verbatim: the caller owns retry policy for storage faults.
		s.metrics.IncrementOutcome("failed", string(mode))
		return nil, err
	}

	if mode == ModeFile {
		s.emitAudit(ctx, audit.Event{
			Action:        audit.ActionCertificateIssued,
			SubjectID:     subjectID,
			CertificateID: identifier,
			RequestID:     requestcontext.RequestID(ctx),
		})
	}

	s.metrics.IncrementOutcome("issued", string(mode))
	return &Result{
		Eligible:   true,
		Identifier: identifier,
		Handle:     handle,
		Token:      token,
		IssuedAt:   issuedAt,
	}, nil
}

// gatherRecords fetches the subject and its dose history in parallel with
// shared cancellation.
func (s *Service) gatherRecords(ctx context.Context, subjectID id.SubjectID) (domain.Subject, []domain.DoseEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var subj domain.Subject
	var doses []domain.DoseEvent

	g.Go(func() error {
		start := time.Now()
		found, err := s.subjects.FindByID(ctx, subjectID)
		s.metrics.ObserveGatherLatency("subject", time.Since(start))
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "subject not found")
			}
			return dErrors.Wrap(dErrors.CodeUnavailable, "subject store", err)
		}
		subj = found
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		found, err := s.doses.ListBySubject(ctx, subjectID)
		s.metrics.ObserveGatherLatency("doses", time.Since(start))
		if err != nil {
			return dErrors.Wrap(dErrors.CodeUnavailable, "dose event store", err)
		}
		doses = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Subject{}, nil, err
	}
	return subj, doses, nil
}

// catalogLookup resolves the canonical product ahead of evaluation. A catalog
// miss degrades to the evaluator's default threshold; a catalog outage is a
// system failure and stops the pipeline.
func (s *Service) catalogLookup(ctx context.Context, doses []domain.DoseEvent) (func(id.ProductID) (domain.ProductCatalogEntry, bool), error) {
	productID, ok := eligibility.CanonicalProductID(doses)
	if !ok {
		return nil, nil
	}

	start := time.Now()
	entry, err := s.catalog.FindByID(ctx, productID)
	s.metrics.ObserveGatherLatency("catalog", time.Since(start))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.DebugContext(ctx, "product not in catalog, using default threshold",
				"product_id", productID,
			)
			return nil, nil
		}
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "catalog store", err)
	}

	return func(pid id.ProductID) (domain.ProductCatalogEntry, bool) {
		if pid == entry.ID {
			return entry, true
		}
		return domain.ProductCatalogEntry{}, false
	}, nil
}

// resolveFacilities looks up the facilities referenced by the certified doses.
// Misses and store failures both degrade to the composer's generic label; the
// document's informational value outweighs strict completeness here.
func (s *Service) resolveFacilities(ctx context.Context, doses []domain.DoseEvent) map[id.FacilityID]domain.IssuingFacility {
	resolved := make(map[id.FacilityID]domain.IssuingFacility)
	for _, d := range doses {
		if d.FacilityID.IsNil() {
			continue
		}
		if _, done := resolved[d.FacilityID]; done {
			continue
		}
		start := time.Now()
		f, err := s.facilities.FindByID(ctx, d.FacilityID)
		s.metrics.ObserveGatherLatency("facility", time.Since(start))
		if err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				s.logger.WarnContext(ctx, "facility lookup failed",
					"facility_id", d.FacilityID,
					"error", err,
				)
			}
			continue
		}
		resolved[d.FacilityID] = f
	}
	return resolved
}

// emitAudit is fail-open: issuance availability outweighs audit completeness.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"subject_id", event.SubjectID,
			"error", err,
		)
	}
}
