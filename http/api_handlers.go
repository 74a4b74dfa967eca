package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"flames/compat"
	"flames/logger"
)

const maxHistoryLimit = 500

type predictResponse struct {
	compat.Result
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *handlers) registerAPI(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/features", h.handleFeatures)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/history", h.handleHistory)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model_type": h.predictor.ModelType(),
		"features":   compat.Features,
	})
}

func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	answers, err := decodeAnswers(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, response := h.predict(r, answers)
	writeJSON(w, status, response)
}

// predict runs one submission and maps it to a status and body shared by the
// JSON and websocket surfaces.
func (h *handlers) predict(r *http.Request, answers compat.Answers) (int, predictResponse) {
	result, err := compat.Present(h.predictor.PredictAnswers(r.Context(), answers))
	if err != nil {
		var inputErr *compat.InputError
		if errors.As(err, &inputErr) {
			return http.StatusBadRequest, predictResponse{
				Result: compat.Result{Features: answers.Vector(), Error: inputErr.Error()},
				Fields: inputErr.Fields,
			}
		}
		logger.FromContext(r.Context(), h.log).Error("unexpected predict error", zap.Error(err))
		return http.StatusInternalServerError, predictResponse{Result: compat.Result{Error: err.Error()}}
	}
	if result.Error != "" {
		return http.StatusInternalServerError, predictResponse{Result: result}
	}
	return http.StatusOK, predictResponse{Result: result}
}

// decodeAnswers reads a JSON body on top of the form defaults.
func decodeAnswers(body io.Reader) (compat.Answers, error) {
	answers := compat.DefaultAnswers()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&answers); err != nil {
		return answers, errors.New("invalid JSON body: " + err.Error())
	}
	return answers, nil
}

func (h *handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "prediction history is disabled")
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit <= 0 || limit > maxHistoryLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	predictions, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context(), h.log).Error("load history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	counts, err := h.history.Count(r.Context())
	if err != nil {
		logger.FromContext(r.Context(), h.log).Error("count history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictions":    predictions,
		"compatible":     counts[1],
		"not_compatible": counts[0],
	})
}
