package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaxcert/internal/certificate"
	"vaxcert/internal/verify"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/httputil"
	"vaxcert/pkg/requestcontext"
)

// Service defines the pipeline operations the handler needs.
type Service interface {
	Issue(ctx context.Context, subjectID id.SubjectID) (*certificate.Result, error)
	Preview(ctx context.Context, subjectID id.SubjectID) (*certificate.Result, error)
}

// Verifier checks verification tokens.
type Verifier interface {
	Verify(raw string) (verify.Claims, error)
}

// Handler wires certificate endpoints to the pipeline service.
type Handler struct {
	service  Service
	verifier Verifier
	logger   *slog.Logger
}

// New constructs a certificate handler with its dependencies.
func New(service Service, verifier Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
	}
}

// Register mounts certificate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/certificates", h.HandleIssue)
	r.Post("/certificates/preview", h.HandlePreview)
	r.Post("/certificates/verify", h.HandleVerify)
}

// HandleIssue handles POST /certificates requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	h.runPipeline(w, r, "issue", h.service.Issue)
}

// HandlePreview handles POST /certificates/preview requests.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	h.runPipeline(w, r, "preview", h.service.Preview)
}

func (h *Handler) runPipeline(
	w http.ResponseWriter,
	r *http.Request,
	mode string,
	run func(context.Context, id.SubjectID) (*certificate.Result, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := run(ctx, req.ParsedSubjectID())
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate pipeline failed",
			"request_id", requestID,
			"subject_id", req.SubjectID,
			"mode", mode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if result.Eligible {
		h.logger.InfoContext(ctx, "certificate generated",
			"request_id", requestID,
			"subject_id", req.SubjectID,
			"mode", mode,
			"certificate_id", result.Identifier,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		h.logger.InfoContext(ctx, "certificate refused",
			"request_id", requestID,
			"subject_id", req.SubjectID,
			"mode", mode,
			"reason", result.Rejection.Reason,
		)
	}

	// Ineligibility is a business outcome, not a fault: still 200.
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleVerify handles POST /certificates/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	claims, err := h.verifier.Verify(req.Token)
	if err != nil {
		h.logger.InfoContext(ctx, "verification token rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromClaims(claims))
}
