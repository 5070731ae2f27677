package converter

import (
	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
)

func MedicalRecordToResponse(record *entity.MedicalRecord) *dto.MedicalRecordResponse {
	if record == nil {
		return nil
	}

	return &dto.MedicalRecordResponse{
		ID:            record.ID,
		AppointmentID: record.AppointmentID,
		PatientID:     record.PatientID,
		DoctorID:      record.DoctorID,
		Diagnosis:     record.Diagnosis,
		Treatment:     record.Treatment,
		Medications:   record.Medications,
		Notes:         record.Notes,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func MedicalRecordsToResponses(records []entity.MedicalRecord) []dto.MedicalRecordResponse {
	responses := make([]dto.MedicalRecordResponse, len(records))
	for i := range records {
		responses[i] = *MedicalRecordToResponse(&records[i])
	}
	return responses
}
