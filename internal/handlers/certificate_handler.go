package handlers

import (
	"log/slog"
	"net/http"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
	"go_course_certify/internal/service"
	"go_course_certify/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CertificateHandler struct {
	service service.CertificateService
	logger  *slog.Logger
}

func NewCertificateHandler(s service.CertificateService, logger *slog.Logger) *CertificateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateHandler{
		service: s,
		logger:  logger,
	}
}

// VerifyCertificate is public: anyone holding a code may confirm it.
func (h *CertificateHandler) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "VerifyCertificate"))

	cert, err := h.service.FindByVerificationCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		logServiceError(logger, "Error verifying certificate", err)
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Certificate verified", slog.String("certificate_id", cert.CertificateID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, cert, logger)
}

func (h *CertificateHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetCertificate"))

	cert, ok := h.ownedCertificate(w, r, logger)
	if !ok {
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, cert, logger)
}

// RecordDownload counts one download of the caller's certificate.
func (h *CertificateHandler) RecordDownload(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "RecordDownload"))

	cert, ok := h.ownedCertificate(w, r, logger)
	if !ok {
		return
	}
	if err := h.service.IncrementDownloadCount(r.Context(), cert.CertificateID); err != nil {
		logServiceError(logger, "Error recording certificate download", err)
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedCertificate loads the certificate named in the URL. Certificates of
// other learners are reported as not found.
func (h *CertificateHandler) ownedCertificate(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*model.Certificate, bool) {
	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return nil, false
	}

	certIDStr := chi.URLParam(r, "certificate_id")
	certID, err := uuid.Parse(certIDStr)
	if err != nil {
		logger.Warn("Invalid certificate ID format in URL", slog.String("certificate_id_str", certIDStr))
		appErr := model.NewAppError("INVALID_URL_PARAM", "certificate_id is not a valid UUID.", "certificate_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return nil, false
	}
	logger = logger.With(slog.String("certificate_id", certID.String()))

	cert, err := h.service.FindByCertificateID(r.Context(), certID)
	if err != nil {
		logServiceError(logger, "Error getting certificate from service", err)
		webutil.HandleError(w, logger, err)
		return nil, false
	}
	if cert.LearnerID != learnerID {
		logger.Warn("Certificate requested by another learner")
		appErr := model.NewAppError("CERTIFICATE_NOT_FOUND", "Certificate not found.", "certificate_id", model.ErrNotFound)
		webutil.HandleError(w, logger, appErr)
		return nil, false
	}
	return cert, true
}
