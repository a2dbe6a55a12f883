package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
	"go_course_certify/internal/service"
	"go_course_certify/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type ProgressHandler struct {
	service service.ProgressService
	logger  *slog.Logger
}

func NewProgressHandler(s service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		service: s,
		logger:  logger,
	}
}

// CompleteLesson records a lesson completion for the calling learner.
func (h *ProgressHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "CompleteLesson"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID := chi.URLParam(r, "course_id")
	lessonID := chi.URLParam(r, "lesson_id")
	logger = logger.With(slog.String("course_id", courseID), slog.String("lesson_id", lessonID))

	var body model.CompleteLessonBody
	if err := webutil.DecodeJSONBody(r, &body); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(body); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.MarkLessonComplete(r.Context(), &model.MarkLessonCompleteRequest{
		LearnerID:        learnerID,
		CourseID:         courseID,
		LessonID:         lessonID,
		TimeSpentMinutes: *body.TimeSpentMinutes,
	})
	if err != nil {
		logServiceError(logger, "Error completing lesson in service", err)
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson completion recorded",
		slog.Int("progress_percentage", progress.ProgressPercentage),
		slog.Bool("certificate_issued", progress.HasCertificate()),
	)
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// UpdatePosition moves the learner's current position in a course.
func (h *ProgressHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "UpdatePosition"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID := chi.URLParam(r, "course_id")
	logger = logger.With(slog.String("course_id", courseID))

	var body model.UpdatePositionBody
	if err := webutil.DecodeJSONBody(r, &body); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(body); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.UpdateCurrentPosition(r.Context(), &model.UpdatePositionRequest{
		LearnerID: learnerID,
		CourseID:  courseID,
		ModuleID:  body.ModuleID,
		ChapterID: body.ChapterID,
		LessonID:  body.LessonID,
	})
	if err != nil {
		logServiceError(logger, "Error updating position in service", err)
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Position updated", slog.String("lesson_id", body.LessonID))
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetProgress"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID := chi.URLParam(r, "course_id")
	logger = logger.With(slog.String("course_id", courseID))

	progress, err := h.service.GetProgress(r.Context(), learnerID, courseID)
	if err != nil {
		logServiceError(logger, "Error getting progress from service", err)
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// logServiceError logs client errors at info and everything else at error.
func logServiceError(logger *slog.Logger, msg string, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrInvalidInput):
		logger.Info(msg, slog.Any("error", err))
	case errors.Is(err, model.ErrConflict):
		logger.Warn(msg, slog.Any("error", err))
	default:
		logger.Error(msg, slog.Any("error", err))
	}
}
