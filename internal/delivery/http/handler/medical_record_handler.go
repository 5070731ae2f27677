package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/delivery/http/middleware"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/response"
	"github.com/peter-abel/healthcare/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type MedicalRecordHandler struct {
	recordUsecase usecase.MedicalRecordUsecase
	validator     *validator.CustomValidator
}

func NewMedicalRecordHandler(recordUsecase usecase.MedicalRecordUsecase, validator *validator.CustomValidator) *MedicalRecordHandler {
	return &MedicalRecordHandler{
		recordUsecase: recordUsecase,
		validator:     validator,
	}
}

func (h *MedicalRecordHandler) CreateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	record, err := h.recordUsecase.Create(r.Context(), caller, appointmentID, req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to create medical record")
		return
	}

	response.Success(w, http.StatusCreated, "Medical record created successfully", record)
}

func (h *MedicalRecordHandler) UpdateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	recordID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid medical record ID")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	record, err := h.recordUsecase.Update(r.Context(), caller, recordID, req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to update medical record")
		return
	}

	response.Success(w, http.StatusOK, "Medical record updated successfully", record)
}

func (h *MedicalRecordHandler) ListPatientRecords(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	patientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.recordUsecase.ListByPatient(r.Context(), caller, patientID, limit, offset)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get medical records")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Medical records retrieved successfully", list.Records,
		response.NewMeta(list.Limit, list.Offset, list.Total))
}

func (h *MedicalRecordHandler) decode(w http.ResponseWriter, r *http.Request) (*dto.MedicalRecordRequest, bool) {
	var req dto.MedicalRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return nil, false
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, false
	}
	return &req, true
}
