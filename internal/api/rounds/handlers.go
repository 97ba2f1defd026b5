// internal/api/rounds/handlers.go
package rounds

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Shamsear/ssleague-sub005/internal/auction"
)

var (
	engine   *auction.Engine
	locks    *auction.LockManager
	initOnce sync.Once
)

// InitHandlers binds the finalization engine and lock manager used by the
// round admin endpoints.
func InitHandlers(e *auction.Engine, l *auction.LockManager) {
	if e == nil || l == nil {
		return
	}
	initOnce.Do(func() {
		engine = e
		locks = l
	})
}

// operatorHeader carries the committee operator identity. Authentication is
// handled upstream; this is only the lock-holder identity.
const operatorHeader = "X-Operator-ID"

type response struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    interface{}           `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
	Details *auction.ErrorDetails `json:"details,omitempty"`
	Type    auction.ErrorKind     `json:"type,omitempty"`
}

// POST /api/v1/rounds/{id}/preview-finalization
func HandlePreviewFinalization(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, logger) {
		return
	}

	roundID := r.PathValue("id")
	operator := r.Header.Get(operatorHeader)
	if operator == "" {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "Operator identity is required"})
		return
	}

	acquired, err := locks.Acquire(r.Context(), roundID, operator)
	if err != nil {
		logger.Error().Err(err).Str("round_id", roundID).Msg("Failed to acquire round lock")
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Error: "Internal server error"})
		return
	}
	if !acquired {
		writeJSON(w, http.StatusConflict, response{
			Success: false,
			Type:    auction.KindLock,
			Error:   "Another operator is already finalizing this round",
		})
		return
	}
	defer releaseLock(r, roundID, operator)

	result, err := engine.PreviewRound(r.Context(), roundID, operator)
	if err != nil {
		writeWorkflowError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data:    result,
		Message: `Preview finalization complete. Review the allocations and click "Finalize for Real" to apply.`,
	})
}

// POST /api/v1/rounds/{id}/apply-pending-allocations
func HandleApplyPendingAllocations(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, logger) {
		return
	}

	roundID := r.PathValue("id")
	operator := r.Header.Get(operatorHeader)
	if operator == "" {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "Operator identity is required"})
		return
	}

	acquired, err := locks.Acquire(r.Context(), roundID, operator)
	if err != nil {
		logger.Error().Err(err).Str("round_id", roundID).Msg("Failed to acquire round lock")
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Error: "Internal server error"})
		return
	}
	if !acquired {
		writeJSON(w, http.StatusConflict, response{
			Success: false,
			Type:    auction.KindLock,
			Error:   "Another operator is already finalizing this round",
		})
		return
	}
	defer releaseLock(r, roundID, operator)

	result, err := engine.Apply(r.Context(), roundID, operator)
	if err != nil {
		writeWorkflowError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data:    result,
		Message: "Round finalized successfully",
	})
}

// GET /api/v1/rounds/{id}/pending-allocations
func HandlePendingAllocations(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, logger) {
		return
	}

	roundID := r.PathValue("id")
	allocations, summary, err := engine.PendingAllocations(r.Context(), roundID)
	if err != nil {
		writeWorkflowError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data: map[string]interface{}{
			"allocations": allocations,
			"summary":     summary,
		},
	})
}

// DELETE /api/v1/rounds/{id}/pending-allocations
func HandleCancelPendingAllocations(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, logger) {
		return
	}

	roundID := r.PathValue("id")
	if err := engine.Cancel(r.Context(), roundID); err != nil {
		writeWorkflowError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Pending allocations cancelled. The round can be previewed again.",
	})
}

// POST /api/v1/rounds/{id}/expire
func HandleExpire(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, logger) {
		return
	}

	roundID := r.PathValue("id")
	if err := engine.Expire(r.Context(), roundID); err != nil {
		writeWorkflowError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Round expired and is awaiting committee finalization",
	})
}

func ready(w http.ResponseWriter, logger *zerolog.Logger) bool {
	if engine == nil || locks == nil {
		logger.Error().Msg("Round handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}

func releaseLock(r *http.Request, roundID, operator string) {
	if err := locks.Release(r.Context(), roundID, operator); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("round_id", roundID).Msg("Failed to release round lock")
	}
}

func writeWorkflowError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	workflowErr, ok := auction.AsError(err)
	if !ok {
		logger.Error().Err(err).Msg("Round finalization failed")
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Error: "Internal server error"})
		return
	}

	writeJSON(w, statusForKind(workflowErr.Kind), response{
		Success: false,
		Type:    workflowErr.Kind,
		Error:   workflowErr.Message,
		Details: workflowErr.Details,
	})
}

func statusForKind(kind auction.ErrorKind) int {
	switch kind {
	case auction.KindLock, auction.KindTiebreaker:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
