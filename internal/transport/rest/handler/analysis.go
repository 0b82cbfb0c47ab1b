package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"insightapi/internal/model"
	"insightapi/internal/service"
)

// AnalysisHandler handles analysis endpoints
type AnalysisHandler struct {
	analyzeSvc *service.AnalyzeService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzeSvc *service.AnalyzeService) *AnalysisHandler {
	return &AnalysisHandler{analyzeSvc: analyzeSvc}
}

// Analyze handles POST /v1/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	// Pipeline failures are reported in-band so callers always get the
	// structured response shape.
	resp := h.analyzeSvc.AnalyzeQuestion(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /v1/analysis/{questionId}
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	record, err := h.analyzeSvc.GetAnalysis(r.Context(), questionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
