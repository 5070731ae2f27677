package http

import (
	"net/http"

	"github.com/peter-abel/healthcare/internal/delivery/http/handler"
	"github.com/peter-abel/healthcare/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	healthHandler         *handler.HealthHandler
	doctorHandler         *handler.DoctorHandler
	bookingHandler        *handler.BookingHandler
	doctorScheduleHandler *handler.DoctorScheduleHandler
	auditLogHandler       *handler.AuditLogHandler
	medicalRecordHandler  *handler.MedicalRecordHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
}

func NewRouter(
	healthHandler *handler.HealthHandler,
	doctorHandler *handler.DoctorHandler,
	bookingHandler *handler.BookingHandler,
	doctorScheduleHandler *handler.DoctorScheduleHandler,
	auditLogHandler *handler.AuditLogHandler,
	medicalRecordHandler *handler.MedicalRecordHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		healthHandler:         healthHandler,
		doctorHandler:         doctorHandler,
		bookingHandler:        bookingHandler,
		doctorScheduleHandler: doctorScheduleHandler,
		auditLogHandler:       auditLogHandler,
		medicalRecordHandler:  medicalRecordHandler,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
	}
}

// Setup registers every route. CORS wraps the whole router so preflight
// requests, which match no route, are still answered.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Check).Methods(http.MethodGet)

	// Everything else needs a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Doctor directory, calendar and slots
	protected.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/slots", r.bookingHandler.GetAvailableSlots).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/calendar", r.doctorScheduleHandler.GetCalendar).Methods(http.MethodGet)
	protected.Handle("/doctors/{doctorId}/calendar/{weekday}",
		middleware.RequireAdminOrDoctor(http.HandlerFunc(r.doctorScheduleHandler.SetAvailability))).Methods(http.MethodPut)

	// Appointments
	protected.Handle("/appointments",
		middleware.RequireAdminOrPatient(http.HandlerFunc(r.bookingHandler.CreateAppointment))).Methods(http.MethodPost)
	protected.Handle("/appointments/bulk",
		middleware.RequireAdminOrPatient(http.HandlerFunc(r.bookingHandler.BulkCreateAppointments))).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", r.bookingHandler.ListAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.bookingHandler.GetAppointment).Methods(http.MethodGet)
	protected.Handle("/appointments/{id}/medical-record",
		middleware.RequireDoctor(http.HandlerFunc(r.medicalRecordHandler.CreateMedicalRecord))).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/{action}", r.bookingHandler.TransitionAppointment).Methods(http.MethodPost)

	// Medical records
	protected.Handle("/medical-records/{id}",
		middleware.RequireDoctor(http.HandlerFunc(r.medicalRecordHandler.UpdateMedicalRecord))).Methods(http.MethodPut)
	protected.HandleFunc("/patients/{id}/medical-records", r.medicalRecordHandler.ListPatientRecords).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/history", r.auditLogHandler.GetAppointmentHistory).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}
