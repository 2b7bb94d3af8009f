package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"AssetCarePlatform/internal/service"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
)

// EngineHandler HTTP обработчик операций движка
type EngineHandler struct {
	maintenance service.MaintenanceService
	incidents   service.IncidentService
	risk        service.RiskService
	logger      logger.Logger
}

// NewEngineHandler создает новый EngineHandler
func NewEngineHandler(
	maintenance service.MaintenanceService,
	incidents service.IncidentService,
	risk service.RiskService,
	log logger.Logger,
) *EngineHandler {
	return &EngineHandler{
		maintenance: maintenance,
		incidents:   incidents,
		risk:        risk,
		logger:      log,
	}
}

// Register регистрирует маршруты движка
func (h *EngineHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tasks", h.scheduleTask)
	mux.HandleFunc("GET /api/v1/tasks", h.listTasks)
	mux.HandleFunc("POST /api/v1/tasks/complete", h.completeTask)
	mux.HandleFunc("POST /api/v1/tasks/cancel", h.cancelTask)
	mux.HandleFunc("POST /api/v1/tasks/plan", h.planBulk)
	mux.HandleFunc("GET /api/v1/schedule", h.classifySchedule)
	mux.HandleFunc("POST /api/v1/incidents", h.reportIncident)
	mux.HandleFunc("GET /api/v1/incidents", h.listIncidents)
	mux.HandleFunc("POST /api/v1/incidents/assign", h.assignIncident)
	mux.HandleFunc("POST /api/v1/incidents/start", h.startIncident)
	mux.HandleFunc("POST /api/v1/incidents/resolve", h.resolveIncident)
	mux.HandleFunc("POST /api/v1/incidents/close", h.closeIncident)
	mux.HandleFunc("GET /api/v1/incidents/score", h.scoreIncident)
	mux.HandleFunc("GET /api/v1/risk", h.riskScore)
}

func (h *EngineHandler) scheduleTask(w http.ResponseWriter, r *http.Request) {
	var req service.ScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.maintenance.Schedule(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, task)
}

func (h *EngineHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	equipmentID := r.URL.Query().Get("equipment_id")

	tasks, err := h.maintenance.ListByEquipment(r.Context(), equipmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *EngineHandler) completeTask(w http.ResponseWriter, r *http.Request) {
	var req service.CompleteRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.maintenance.Complete(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, task)
}

func (h *EngineHandler) cancelTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID string `json:"task_id"`
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.maintenance.Cancel(r.Context(), req.TaskID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, task)
}

func (h *EngineHandler) planBulk(w http.ResponseWriter, r *http.Request) {
	var req service.PlanBulkRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.maintenance.PlanBulk(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *EngineHandler) classifySchedule(w http.ResponseWriter, r *http.Request) {
	windowDays := 7
	if v := r.URL.Query().Get("window_days"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			h.writeError(w, errors.New(errors.ErrValidation, "window_days must be a positive integer"))
			return
		}
		windowDays = parsed
	}

	classification, err := h.maintenance.ClassifySchedule(r.Context(), windowDays)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, classification)
}

func (h *EngineHandler) reportIncident(w http.ResponseWriter, r *http.Request) {
	var req service.ReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.incidents.Report(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, incident)
}

func (h *EngineHandler) listIncidents(w http.ResponseWriter, r *http.Request) {
	equipmentID := r.URL.Query().Get("equipment_id")

	incidents, err := h.incidents.ListByEquipment(r.Context(), equipmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, incidents)
}

func (h *EngineHandler) assignIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncidentID string `json:"incident_id"`
		Role       string `json:"role"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.incidents.Assign(r.Context(), req.IncidentID, req.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, incident)
}

func (h *EngineHandler) startIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncidentID string `json:"incident_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.incidents.StartProgress(r.Context(), req.IncidentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, incident)
}

func (h *EngineHandler) resolveIncident(w http.ResponseWriter, r *http.Request) {
	var req service.ResolveRequest
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.incidents.Resolve(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, incident)
}

func (h *EngineHandler) closeIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncidentID string `json:"incident_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.incidents.Close(r.Context(), req.IncidentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, incident)
}

func (h *EngineHandler) scoreIncident(w http.ResponseWriter, r *http.Request) {
	incidentID := r.URL.Query().Get("incident_id")

	score, err := h.incidents.Score(r.Context(), incidentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"score": score})
}

func (h *EngineHandler) riskScore(w http.ResponseWriter, r *http.Request) {
	windowHours := 24
	if v := r.URL.Query().Get("window_hours"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			h.writeError(w, errors.New(errors.ErrValidation, "window_hours must be a positive integer"))
			return
		}
		windowHours = parsed
	}

	assessment, err := h.risk.ComputeRiskScore(r.Context(), time.Duration(windowHours)*time.Hour)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, assessment)
}

// decode разбирает тело запроса, при ошибке пишет ответ и возвращает false
func (h *EngineHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, errors.Wrap(err, errors.ErrValidation, "invalid request body"))
		return false
	}
	return true
}

func (h *EngineHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *EngineHandler) writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.Error)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrInternal, "internal error")
	}

	h.logger.Warn("Request failed",
		logger.String("code", string(appErr.Code)),
		logger.Error(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())

	response := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    appErr.Code,
			"message": appErr.GetUserMessage(),
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode error response", logger.Error(err))
	}
}

// parsePositiveInt разбирает строго положительное целое из строки запроса
func parsePositiveInt(s string) (int, error) {
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrValidation, "not a number")
	}
	if value <= 0 {
		return 0, errors.New(errors.ErrValidation, "must be positive")
	}
	return value, nil
}
