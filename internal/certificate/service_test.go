package certificate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vaxcert/internal/audit"
	"vaxcert/internal/catalog"
	"vaxcert/internal/certificate"
	"vaxcert/internal/certificate/mocks"
	"vaxcert/internal/domain"
	"vaxcert/internal/eligibility"
	"vaxcert/internal/facility"
	"vaxcert/internal/immunization"
	"vaxcert/internal/sink"
	"vaxcert/internal/subject"
	"vaxcert/internal/verify"
	id "vaxcert/pkg/domain"
	dErrors "vaxcert/pkg/domain-errors"
	"vaxcert/pkg/requestcontext"
	"vaxcert/pkg/testutil"
)

var fixedInstant = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	subjects   *subject.InMemoryStore
	doses      *immunization.InMemoryStore
	catalog    *catalog.InMemoryStore
	facilities *facility.InMemoryStore
	auditLog   *audit.InMemoryStore
	service    *certificate.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		subjects:   subject.NewInMemoryStore(),
		doses:      immunization.NewInMemoryStore(),
		catalog:    catalog.NewInMemoryStore(),
		facilities: facility.NewInMemoryStore(),
		auditLog:   audit.NewInMemoryStore(),
	}
	f.service = certificate.NewService(certificate.Config{
		Subjects:    f.subjects,
		Doses:       f.doses,
		Catalog:     f.catalog,
		Facilities:  f.facilities,
		FileSink:    sink.NewMemorySink(),
		PreviewSink: sink.NewMemorySink(),
		Signer:      verify.NewSigner([]byte("test-signing-key"), time.Hour),
		Audit:       audit.NewStorePublisher(f.auditLog),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

func (f *fixture) seedSubject(t *testing.T, raw string) id.SubjectID {
	t.Helper()
	subjectID, err := id.ParseSubjectID(raw)
	require.NoError(t, err)
	f.subjects.Seed(domain.Subject{
		ID:          subjectID,
		DisplayName: "Maria Santos",
		DateOfBirth: time.Date(1990, time.June, 2, 0, 0, 0, 0, time.UTC),
		Sex:         "F",
		Locality:    "Porto",
	})
	return subjectID
}

func (f *fixture) seedProduct(t *testing.T, requiredDoses int) id.ProductID {
	t.Helper()
	productID, err := id.ParseProductID("prod-alpha")
	require.NoError(t, err)
	f.catalog.Seed(domain.ProductCatalogEntry{
		ID:            productID,
		DisplayName:   "Alphavax",
		Manufacturer:  "Alpha Labs",
		RequiredDoses: requiredDoses,
		Available:     true,
	})
	return productID
}

func completedDose(t *testing.T, subjectID id.SubjectID, productID id.ProductID, seq int) domain.DoseEvent {
	t.Helper()
	return domain.DoseEvent{
		ID:        id.DoseEventID("dose-" + string(rune('0'+seq))),
		SubjectID: subjectID,
		ProductID: productID,
		Sequence:  seq,
		State:     domain.DoseCompleted,
		Date:      fixedInstant.AddDate(0, -seq, 0),
	}
}

func fixedCtx() context.Context {
	return requestcontext.WithTime(context.Background(), fixedInstant)
}

func TestService_Issue_InsufficientDoses(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)
	f.doses.Seed(completedDose(t, subjectID, productID, 1))

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)

	testutil.Then(t, "the outcome is ineligible with counts", func(t *testing.T) {
		assert.False(t, result.Eligible)
		assert.Equal(t, eligibility.ReasonInsufficientDoses, result.Rejection.Reason)
		assert.Equal(t, 1, result.Rejection.Have)
		assert.Equal(t, 2, result.Rejection.Need)
		assert.Empty(t, result.Identifier)
	})

	testutil.Then(t, "a rejection event is audited", func(t *testing.T) {
		events, err := f.auditLog.ListBySubject(context.Background(), subjectID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionCertificateRejected, events[0].Action)
		assert.Equal(t, string(eligibility.ReasonInsufficientDoses), events[0].Reason)
		assert.Equal(t, fixedInstant, events[0].Timestamp)
	})
}

func TestService_Issue_NoCompletedDoses(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)

	scheduled := completedDose(t, subjectID, productID, 1)
	scheduled.State = domain.DoseScheduled
	f.doses.Seed(scheduled)

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)

	assert.False(t, result.Eligible)
	assert.Equal(t, eligibility.ReasonNoCompletedDoses, result.Rejection.Reason)
}

func TestService_Issue_ExactThreshold(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)
	// Seeded out of order; the certified set must come back sorted.
	f.doses.Seed(
		completedDose(t, subjectID, productID, 2),
		completedDose(t, subjectID, productID, 1),
	)

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)
	require.True(t, result.Eligible)

	testutil.Then(t, "the identifier derives from subject and instant", func(t *testing.T) {
		assert.Equal(t, certificate.NewIdentifier(subjectID, fixedInstant), result.Identifier)
		assert.Regexp(t, `^VAC-00042-[0-9A-Z]{5}$`, result.Identifier)
	})

	testutil.Then(t, "the in-memory handle carries rendered content", func(t *testing.T) {
		assert.Empty(t, result.Handle.Path)
		assert.Contains(t, string(result.Handle.Content), "CERTIFICATE OF VACCINATION")
		assert.Contains(t, string(result.Handle.Content), "Dose 1")
		assert.Contains(t, string(result.Handle.Content), "Dose 2")
	})

	testutil.Then(t, "the verification token round-trips", func(t *testing.T) {
		signer := verify.NewSigner([]byte("test-signing-key"), time.Hour)
		claims, err := signer.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.Identifier, claims.CertificateID)
		assert.Equal(t, subjectID.String(), claims.SubjectID)
	})

	testutil.Then(t, "an issuance event is audited", func(t *testing.T) {
		events, err := f.auditLog.ListBySubject(context.Background(), subjectID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionCertificateIssued, events[0].Action)
		assert.Equal(t, result.Identifier, events[0].CertificateID)
	})
}

func TestService_Issue_ExcessDosesTruncated(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "7")
	productID := f.seedProduct(t, 2)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 3),
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)
	require.True(t, result.Eligible)

	content := string(result.Handle.Content)
	assert.Contains(t, content, "Dose 1")
	assert.Contains(t, content, "Dose 2")
	assert.NotContains(t, content, "Dose 3")
}

func TestService_Issue_UnknownProductUsesDefaultThreshold(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	// Nothing seeded in the catalog for this product.
	productID, err := id.ParseProductID("prod-ghost")
	require.NoError(t, err)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
}

func TestService_Issue_UnknownFacilityFallsBack(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)

	first := completedDose(t, subjectID, productID, 1)
	first.FacilityID = id.FacilityID("fac-unknown")
	second := completedDose(t, subjectID, productID, 2)
	second.FacilityID = id.FacilityID("fac-unknown")
	f.doses.Seed(first, second)

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)
	require.True(t, result.Eligible)
	assert.Contains(t, string(result.Handle.Content), "Authorized Center")
}

func TestService_Preview_NoAuditEvent(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	result, err := f.service.Preview(fixedCtx(), subjectID)
	require.NoError(t, err)
	require.True(t, result.Eligible)
	assert.NotEmpty(t, result.Handle.Content)

	events, err := f.auditLog.ListBySubject(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestService_Issue_SubjectNotFound(t *testing.T) {
	f := newFixture(t)
	subjectID, err := id.ParseSubjectID("999")
	require.NoError(t, err)

	result, err := f.service.Issue(fixedCtx(), subjectID)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestService_Issue_CatalogOutage(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")

	productID, err := id.ParseProductID("prod-alpha")
	require.NoError(t, err)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	brokenCatalog := mocks.NewMockCatalogStore(ctrl)
	brokenCatalog.EXPECT().
		FindByID(gomock.Any(), productID).
		Return(domain.ProductCatalogEntry{}, errors.New("connection refused"))

	svc := certificate.NewService(certificate.Config{
		Subjects:    f.subjects,
		Doses:       f.doses,
		Catalog:     brokenCatalog,
		Facilities:  f.facilities,
		FileSink:    sink.NewMemorySink(),
		PreviewSink: sink.NewMemorySink(),
		Signer:      verify.NewSigner([]byte("test-signing-key"), time.Hour),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	result, err := svc.Issue(fixedCtx(), subjectID)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestService_Issue_SinkFailureSurfaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	sinkErr := dErrors.New(dErrors.CodeUnavailable, "write certificate artifact")
	brokenSink := mocks.NewMockSink(ctrl)
	brokenSink.EXPECT().
		Materialize(gomock.Any(), gomock.Any()).
		Return(sink.Handle{}, sinkErr)

	svc := certificate.NewService(certificate.Config{
		Subjects:    f.subjects,
		Doses:       f.doses,
		Catalog:     f.catalog,
		Facilities:  f.facilities,
		FileSink:    brokenSink,
		PreviewSink: sink.NewMemorySink(),
		Signer:      verify.NewSigner([]byte("test-signing-key"), time.Hour),
		Audit:       audit.NewStorePublisher(f.auditLog),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	result, err := svc.Issue(fixedCtx(), subjectID)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, sinkErr)

	testutil.Then(t, "no issuance event is audited", func(t *testing.T) {
		events, err := f.auditLog.ListBySubject(context.Background(), subjectID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestService_Issue_AuditFailureDoesNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	flakyAudit := mocks.NewMockPublisher(ctrl)
	flakyAudit.EXPECT().
		Emit(gomock.Any(), gomock.Any()).
		Return(errors.New("broker unavailable"))

	svc := certificate.NewService(certificate.Config{
		Subjects:    f.subjects,
		Doses:       f.doses,
		Catalog:     f.catalog,
		Facilities:  f.facilities,
		FileSink:    sink.NewMemorySink(),
		PreviewSink: sink.NewMemorySink(),
		Signer:      verify.NewSigner([]byte("test-signing-key"), time.Hour),
		Audit:       flakyAudit,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	result, err := svc.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
}

func TestService_Issue_DeterministicComposition(t *testing.T) {
	f := newFixture(t)
	subjectID := f.seedSubject(t, "42")
	productID := f.seedProduct(t, 2)
	f.doses.Seed(
		completedDose(t, subjectID, productID, 1),
		completedDose(t, subjectID, productID, 2),
	)

	first, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)
	second, err := f.service.Issue(fixedCtx(), subjectID)
	require.NoError(t, err)

	// Same subject, same instant: identical identifier and identical bytes.
	assert.Equal(t, first.Identifier, second.Identifier)
	assert.Equal(t, first.Handle.Content, second.Handle.Content)

	later, err := f.service.Issue(
		requestcontext.WithTime(context.Background(), fixedInstant.Add(time.Minute)),
		subjectID,
	)
	require.NoError(t, err)
	assert.NotEqual(t, first.Identifier, later.Identifier)
}
