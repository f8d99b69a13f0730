package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/service"
)

type OptimizerHandler struct {
	optimizer service.ContentOptimizer
	logger    *slog.Logger
}

func NewOptimizerHandler(o service.ContentOptimizer, logger *slog.Logger) *OptimizerHandler {
	return &OptimizerHandler{optimizer: o, logger: logger}
}

// Optimize handles POST /ai/optimize
func (h *OptimizerHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req model.OptimizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	resp, err := h.optimizer.Optimize(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Content optimization failed", slog.Any("error", err))
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
