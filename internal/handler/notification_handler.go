package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/service"
	"github.com/samims/notifier/pkg/tracing"
)

type NotificationHandler struct {
	svc    service.NotificationService
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewNotificationHandler(s service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		svc:    s,
		logger: logger.With("layer", "handler", "component", "notificationHandler"),
		tracer: tracing.NewTracer("notification-handler"),
	}
}

// Create accepts a notification request and answers 201 once it is persisted
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "CreateNotification")
	defer span.End()

	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid notification payload", slog.String("error", err.Error()))
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	resp, err := h.svc.Create(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.tracer.RecordError(span, err)
			h.logger.ErrorContext(ctx, "Create notification failed", slog.Any("error", err))
			respondError(w, status, "failed to create notification")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "GetNotification")
	defer span.End()

	id := chi.URLParam(r, "id")
	n, err := h.svc.Get(ctx, id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			h.logger.Warn("Notification not found", "id", id)
			respondError(w, status, err.Error())
			return
		}
		h.tracer.RecordError(span, err)
		h.logger.Error("GetByID failed", "id", id, "error", err)
		respondError(w, status, "failed to fetch notification")
		return
	}
	respondJSON(w, http.StatusOK, n)
}
