package mocks

import (
	"sync"

	"github.com/Kotlang/clinicAuthGo/db"
	"github.com/Kotlang/clinicAuthGo/otp"
)

// MockAuthDb is an in-memory AuthDbInterface. Each clinic gets its own
// repositories, created on first use.
type MockAuthDb struct {
	mu           sync.Mutex
	otps         map[string]*otp.MemoryOtpRepository
	patients     map[string]*PatientRepositoryMock
	appointments map[string]*AppointmentRepositoryMock
}

func NewMockAuthDb() *MockAuthDb {
	return &MockAuthDb{
		otps:         map[string]*otp.MemoryOtpRepository{},
		patients:     map[string]*PatientRepositoryMock{},
		appointments: map[string]*AppointmentRepositoryMock{},
	}
}

func (m *MockAuthDb) Otp(clinic string) db.OtpRepositoryInterface {
	return m.OtpRepo(clinic)
}

func (m *MockAuthDb) Patient(clinic string) db.PatientRepositoryInterface {
	return m.PatientRepo(clinic)
}

func (m *MockAuthDb) Appointment(clinic string) db.AppointmentRepositoryInterface {
	return m.AppointmentRepo(clinic)
}

func (m *MockAuthDb) OtpRepo(clinic string) *otp.MemoryOtpRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.otps[clinic]; !ok {
		m.otps[clinic] = otp.NewMemoryOtpRepository()
	}
	return m.otps[clinic]
}

func (m *MockAuthDb) PatientRepo(clinic string) *PatientRepositoryMock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[clinic]; !ok {
		m.patients[clinic] = NewPatientRepositoryMock()
	}
	return m.patients[clinic]
}

func (m *MockAuthDb) AppointmentRepo(clinic string) *AppointmentRepositoryMock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[clinic]; !ok {
		m.appointments[clinic] = NewAppointmentRepositoryMock()
	}
	return m.appointments[clinic]
}
