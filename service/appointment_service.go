package service

import (
	"context"
	"time"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/db"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/models"
	"go.uber.org/zap"
)

type BookingRequest struct {
	DoctorId string
	Date     string // 2006-01-02
	Time     string // 15:04
	Reason   string
}

type AppointmentService struct {
	db      db.AuthDbInterface
	clinic  string
	secret  []byte
	timeout time.Duration
}

func ProvideAppointmentService(authDb db.AuthDbInterface, clinic string, secret []byte, timeout time.Duration) *AppointmentService {
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}
	return &AppointmentService{db: authDb, clinic: clinic, secret: secret, timeout: timeout}
}

// Book schedules an appointment for the token's patient and hands out the
// clinic's next queue number for that date.
func (s *AppointmentService) Book(ctx context.Context, token string, req BookingRequest) (*models.AppointmentModel, error) {
	patientId, err := authorize(s.secret, s.clinic, token)
	if err != nil {
		return nil, err
	}
	if err := ValidateBookingRequest(&req); err != nil {
		return nil, err
	}

	appointment := &models.AppointmentModel{
		PatientId:   patientId,
		DoctorId:    req.DoctorId,
		Date:        req.Date,
		Time:        req.Time,
		Status:      models.AppointmentScheduled,
		TokenNumber: 1,
		Reason:      req.Reason,
		CreatedOn:   time.Now().Unix(),
	}
	// reject bad dates before a queue number is spent on them
	if err := models.Validate(appointment); err != nil {
		return nil, autherr.New(autherr.InvalidInput, "", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	repo := s.db.Appointment(s.clinic)
	tokenNumber, err := db.AwaitOn(repo.NextTokenNumber(ctx, req.Date))(ctx)
	if err != nil {
		logger.Error("Failed allocating token number", zap.String("date", req.Date), zap.Error(err))
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}
	appointment.TokenNumber = tokenNumber
	appointment.Id()

	if err := db.AwaitErr(ctx, repo.Save(ctx, appointment)); err != nil {
		logger.Error("Failed saving appointment", zap.String("patientId", patientId), zap.Error(err))
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}
	return appointment, nil
}

// List returns the token's patient appointments ordered by date and time.
func (s *AppointmentService) List(ctx context.Context, token string) ([]models.AppointmentModel, error) {
	patientId, err := authorize(s.secret, s.clinic, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	appointments, err := db.AwaitOn(s.db.Appointment(s.clinic).FindByPatient(ctx, patientId))(ctx)
	if err != nil {
		logger.Error("Failed listing appointments", zap.String("patientId", patientId), zap.Error(err))
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}
	return appointments, nil
}

// Cancel moves one of the patient's open appointments to cancelled.
func (s *AppointmentService) Cancel(ctx context.Context, token, appointmentId string) (*models.AppointmentModel, error) {
	patientId, err := authorize(s.secret, s.clinic, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	repo := s.db.Appointment(s.clinic)
	appointment, err := db.AwaitOn(repo.FindOneById(ctx, appointmentId))(ctx)
	if err != nil {
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}
	if appointment == nil || appointment.PatientId != patientId {
		return nil, autherr.New(autherr.NotFound, "Appointment not found.", nil)
	}
	if appointment.Status.IsTerminal() {
		return nil, autherr.New(autherr.InvalidState, "This appointment can no longer be cancelled.", nil)
	}

	appointment.Status = models.AppointmentCancelled
	if err := db.AwaitErr(ctx, repo.Save(ctx, appointment)); err != nil {
		logger.Error("Failed cancelling appointment", zap.String("id", appointmentId), zap.Error(err))
		return nil, autherr.Wrap(autherr.StoreUnavailable, err)
	}
	return appointment, nil
}
