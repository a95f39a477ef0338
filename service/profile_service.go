package service

import (
	"context"
	"time"

	"github.com/Kotlang/clinicAuthGo/auth"
	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/db"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/models"
	"github.com/Kotlang/clinicAuthGo/session"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

type ProfileService struct {
	db       db.AuthDbInterface
	sessions session.StoreInterface
	clinic   string
	secret   []byte
	timeout  time.Duration
}

func ProvideProfileService(authDb db.AuthDbInterface, sessions session.StoreInterface, clinic string, secret []byte, timeout time.Duration) *ProfileService {
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}
	return &ProfileService{
		db:       authDb,
		sessions: sessions,
		clinic:   clinic,
		secret:   secret,
		timeout:  timeout,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, token string) (*models.PatientModel, error) {
	patientId, err := authorize(s.secret, s.clinic, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.fetch(ctx, patientId)
}

// UpdateProfile applies the non-empty fields of patch to the token's own
// patient. Email and id are never touched.
func (s *ProfileService) UpdateProfile(ctx context.Context, token string, patch models.ProfilePatch) (*models.PatientModel, error) {
	patientId, err := authorize(s.secret, s.clinic, token)
	if err != nil {
		return nil, err
	}
	if err := ValidateProfilePatch(&patch); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	patient, err := s.fetch(ctx, patientId)
	if err != nil {
		return nil, err
	}

	if err := copier.CopyWithOption(patient, &patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, autherr.New(autherr.Unknown, "", err)
	}
	patient.UpdatedOn = time.Now().Unix()

	if err := models.Validate(patient); err != nil {
		return nil, autherr.New(autherr.InvalidInput, "", err)
	}

	if err := db.AwaitErr(ctx, s.db.Patient(s.clinic).Save(ctx, patient)); err != nil {
		logger.Error("Failed saving profile", zap.String("patientId", patientId), zap.Error(err))
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}

	// keep the device copy in step when it is the signed in patient
	if current := s.sessions.Current(); current != nil && current.Patient.PatientId == patientId {
		if err := s.sessions.Persist(ctx, patient, current.Token); err != nil {
			logger.Warn("Failed refreshing persisted session", zap.Error(err))
		}
	}

	return patient, nil
}

func (s *ProfileService) fetch(ctx context.Context, patientId string) (*models.PatientModel, error) {
	patient, err := db.AwaitOn(s.db.Patient(s.clinic).FindOneById(ctx, patientId))(ctx)
	if err != nil {
		logger.Error("Failed fetching profile", zap.String("patientId", patientId), zap.Error(err))
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}
	if patient == nil {
		return nil, autherr.New(autherr.NotFound, "Patient not found.", nil)
	}
	return patient, nil
}

func authorize(secret []byte, clinic, token string) (string, error) {
	patientId, err := auth.VerifyToken(secret, clinic, token)
	if err != nil {
		return "", autherr.New(autherr.Unauthorized, "", err)
	}
	return patientId, nil
}
