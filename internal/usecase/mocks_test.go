package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newMockDB opens gorm on a sqlmock connection; repositories are mocked, so only
// transaction boundaries reach the driver
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, sqlMock
}

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return m.Called(ctx, db, appointment).Error(0)
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	args := m.Called(ctx, db, id)
	apt, _ := args.Get(0).(*entity.Appointment)
	return apt, args.Error(1)
}

func (m *mockAppointmentRepo) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	args := m.Called(ctx, db, filter)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

func (m *mockAppointmentRepo) FindActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	args := m.Called(ctx, db, doctorID, date)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, db *gorm.DB, apt *entity.Appointment, from entity.AppointmentStatus) error {
	return m.Called(ctx, db, apt, from).Error(0)
}

func (m *mockAppointmentRepo) FindOpenStartedBefore(ctx context.Context, db *gorm.DB, now time.Time) ([]entity.Appointment, error) {
	args := m.Called(ctx, db, now)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error) {
	args := m.Called(ctx, db, doctorID)
	rows, _ := args.Get(0).([]entity.DoctorSchedule)
	return rows, args.Error(1)
}

func (m *mockScheduleRepo) Upsert(ctx context.Context, db *gorm.DB, schedule *entity.DoctorSchedule) error {
	return m.Called(ctx, db, schedule).Error(0)
}

type mockDoctorRepo struct {
	mock.Mock
}

func (m *mockDoctorRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	args := m.Called(ctx, db, userID)
	profile, _ := args.Get(0).(*entity.DoctorProfile)
	return profile, args.Error(1)
}

func (m *mockDoctorRepo) FindAll(ctx context.Context, db *gorm.DB, specialization string) ([]entity.DoctorProfile, error) {
	args := m.Called(ctx, db, specialization)
	profiles, _ := args.Get(0).([]entity.DoctorProfile)
	return profiles, args.Error(1)
}

type mockPatientRepo struct {
	mock.Mock
}

func (m *mockPatientRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	args := m.Called(ctx, db, userID)
	profile, _ := args.Get(0).(*entity.PatientProfile)
	return profile, args.Error(1)
}

type mockAuditLogRepo struct {
	mock.Mock
}

func (m *mockAuditLogRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return m.Called(ctx, db, log).Error(0)
}

func (m *mockAuditLogRepo) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	args := m.Called(ctx, db, filter)
	logs, _ := args.Get(0).([]entity.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

func (m *mockAuditLogRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	args := m.Called(ctx, db, id)
	log, _ := args.Get(0).(*entity.AuditLog)
	return log, args.Error(1)
}

type mockMedicalRecordRepo struct {
	mock.Mock
}

func (m *mockMedicalRecordRepo) Create(ctx context.Context, db *gorm.DB, record *entity.MedicalRecord) error {
	return m.Called(ctx, db, record).Error(0)
}

func (m *mockMedicalRecordRepo) Update(ctx context.Context, db *gorm.DB, record *entity.MedicalRecord) error {
	return m.Called(ctx, db, record).Error(0)
}

func (m *mockMedicalRecordRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.MedicalRecord, error) {
	args := m.Called(ctx, db, id)
	record, _ := args.Get(0).(*entity.MedicalRecord)
	return record, args.Error(1)
}

func (m *mockMedicalRecordRepo) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.MedicalRecord, error) {
	args := m.Called(ctx, db, appointmentID)
	record, _ := args.Get(0).(*entity.MedicalRecord)
	return record, args.Error(1)
}

func (m *mockMedicalRecordRepo) FindByPatientID(ctx context.Context, db *gorm.DB, filter *entity.MedicalRecordFilter) ([]entity.MedicalRecord, int64, error) {
	args := m.Called(ctx, db, filter)
	records, _ := args.Get(0).([]entity.MedicalRecord)
	return records, args.Get(1).(int64), args.Error(2)
}

type mockAuditService struct {
	mock.Mock
}

func (m *mockAuditService) LogCreate(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, entityName string, entityID string, newValue interface{}) error {
	return m.Called(ctx, tx, caller, action, entityName, entityID, newValue).Error(0)
}

func (m *mockAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return m.Called(ctx, tx, caller, action, entityName, entityID, oldValue, newValue).Error(0)
}

type mockSlotCache struct {
	mock.Mock
}

func (m *mockSlotCache) Get(ctx context.Context, key entity.CacheKey) ([]entity.TimeOfDay, bool, error) {
	args := m.Called(ctx, key)
	slots, _ := args.Get(0).([]entity.TimeOfDay)
	return slots, args.Bool(1), args.Error(2)
}

func (m *mockSlotCache) Set(ctx context.Context, key entity.CacheKey, slots []entity.TimeOfDay, ttl time.Duration) error {
	return m.Called(ctx, key, slots, ttl).Error(0)
}

func (m *mockSlotCache) Invalidate(ctx context.Context, entityType string, ownerID uuid.UUID) error {
	return m.Called(ctx, entityType, ownerID).Error(0)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Enqueue(ctx context.Context, event entity.NotificationEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, mail service.Mail) error {
	return m.Called(ctx, mail).Error(0)
}
