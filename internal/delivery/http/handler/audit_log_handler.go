package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auditLogID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid audit log ID")
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditLogNotFound) {
			response.NotFound(w, "Audit log not found")
			return
		}
		response.InternalServerError(w, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := entity.AuditLogFilter{
		Action:   query.Get("action"),
		Entity:   query.Get("entity"),
		EntityID: query.Get("entity_id"),
	}
	if raw := query.Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid user_id")
			return
		}
		filter.UserID = &userID
	}

	h.writeAuditLogs(w, r, filter)
}

// GetAppointmentHistory lists every audited change of one appointment
func (h *AuditLogHandler) GetAppointmentHistory(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	h.writeAuditLogs(w, r, entity.AuditLogFilter{
		Entity:   entity.AuditEntityAppointment,
		EntityID: appointmentID.String(),
	})
}

func (h *AuditLogHandler) writeAuditLogs(w http.ResponseWriter, r *http.Request, filter entity.AuditLogFilter) {
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs.Logs,
		response.NewMeta(auditLogs.Limit, auditLogs.Offset, auditLogs.Total))
}
