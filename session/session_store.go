package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/models"
	"go.uber.org/zap"
)

const (
	tokenKey   = "patient_token"
	patientKey = "patient_identity"
)

type StoreInterface interface {
	Restore(ctx context.Context) (*models.SessionModel, error)
	Persist(ctx context.Context, patient *models.PatientModel, token string) error
	Clear(ctx context.Context) error
	Current() *models.SessionModel
}

// Store persists the session on the device and mirrors it in memory. The
// mirror drives the running app, the persisted copy survives restarts.
type Store struct {
	storage DeviceStorage

	mu      sync.RWMutex
	current *models.SessionModel
}

func ProvideStore(storage DeviceStorage) *Store {
	return &Store{storage: storage}
}

// Restore loads the persisted session. Absent or corrupt entries yield nil
// without an error; only storage failures are reported.
func (s *Store) Restore(ctx context.Context) (*models.SessionModel, error) {
	token, hasToken, err := s.storage.GetItem(ctx, tokenKey)
	if err != nil {
		return nil, autherr.New(autherr.StoreUnavailable, "", err)
	}
	raw, hasPatient, err := s.storage.GetItem(ctx, patientKey)
	if err != nil {
		return nil, autherr.New(autherr.StoreUnavailable, "", err)
	}

	if !hasToken || !hasPatient {
		s.setCurrent(nil)
		return nil, nil
	}

	patient := &models.PatientModel{}
	if err := json.Unmarshal([]byte(raw), patient); err != nil || token == "" || models.Validate(patient) != nil || patient.PatientId == "" {
		logger.Warn("Ignoring corrupt persisted session", zap.Error(err))
		s.setCurrent(nil)
		return nil, nil
	}

	session := &models.SessionModel{Token: token, Patient: patient}
	s.setCurrent(session)
	return session, nil
}

// Persist stores patient and token together.
func (s *Store) Persist(ctx context.Context, patient *models.PatientModel, token string) error {
	raw, err := json.Marshal(patient)
	if err != nil {
		return autherr.New(autherr.Unknown, "", err)
	}

	err = s.storage.SetItems(ctx, map[string]string{
		tokenKey:   token,
		patientKey: string(raw),
	})
	if err != nil {
		logger.Error("Failed persisting session", zap.String("patientId", patient.PatientId), zap.Error(err))
		return autherr.New(autherr.StoreUnavailable, "", err)
	}

	copied := *patient
	s.setCurrent(&models.SessionModel{Token: token, Patient: &copied})
	return nil
}

// Clear removes the persisted session. Clearing an empty store is fine.
func (s *Store) Clear(ctx context.Context) error {
	s.setCurrent(nil)
	if err := s.storage.RemoveItems(ctx, tokenKey, patientKey); err != nil {
		logger.Error("Failed clearing session", zap.Error(err))
		return autherr.New(autherr.StoreUnavailable, "", err)
	}
	return nil
}

// Current returns the in-memory mirror, nil when signed out.
func (s *Store) Current() *models.SessionModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	if copied.Patient != nil {
		patient := *copied.Patient
		copied.Patient = &patient
	}
	return &copied
}

func (s *Store) setCurrent(session *models.SessionModel) {
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
}
