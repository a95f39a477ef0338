package otp

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/db"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/metrics"
	"github.com/Kotlang/clinicAuthGo/models"
	"go.uber.org/zap"
)

const DefaultTTL = 180 * time.Second

type OtpStoreInterface interface {
	Issue(ctx context.Context, identifier string) (*models.OtpModel, error)
	Verify(ctx context.Context, identifier, code string) error
	Invalidate(ctx context.Context, identifier string) error
}

// OtpStore issues and checks codes against a repository. Expiry is always
// judged by the store's own clock at verify time.
type OtpStore struct {
	repo     db.OtpRepositoryInterface
	ttl      time.Duration
	now      func() time.Time
	generate CodeGenerator
}

func ProvideOtpStore(repo db.OtpRepositoryInterface, ttl time.Duration) *OtpStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &OtpStore{
		repo:     repo,
		ttl:      ttl,
		now:      time.Now,
		generate: GenerateCode,
	}
}

func (s *OtpStore) WithClock(now func() time.Time) *OtpStore {
	s.now = now
	return s
}

func (s *OtpStore) WithGenerator(generate CodeGenerator) *OtpStore {
	s.generate = generate
	return s
}

func (s *OtpStore) TTL() time.Duration {
	return s.ttl
}

// Issue creates a fresh code for identifier, overwriting any previous one.
func (s *OtpStore) Issue(ctx context.Context, identifier string) (*models.OtpModel, error) {
	code, err := s.generate()
	if err != nil {
		logger.Error("Failed generating otp", zap.Error(err))
		return nil, autherr.New(autherr.Unknown, "", err)
	}

	issuedAt := s.now()
	record := &models.OtpModel{
		Identifier: models.NormalizeEmail(identifier),
		Code:       code,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(s.ttl),
	}

	if err := db.AwaitErr(ctx, s.repo.Save(ctx, record)); err != nil {
		logger.Error("Failed saving otp", zap.String("email", record.Identifier), zap.Error(err))
		return nil, autherr.New(autherr.StoreUnavailable, "", err)
	}

	metrics.OtpIssued.Inc()
	return record, nil
}

// Verify checks code for identifier and consumes the record on success.
// Only one of several concurrent callers with the right code succeeds.
func (s *OtpStore) Verify(ctx context.Context, identifier, code string) error {
	err := s.verify(ctx, models.NormalizeEmail(identifier), code)
	if err != nil {
		metrics.OtpVerify.WithLabelValues(string(autherr.ReasonOf(err))).Inc()
		return err
	}
	metrics.OtpVerify.WithLabelValues("ok").Inc()
	return nil
}

func (s *OtpStore) verify(ctx context.Context, identifier, code string) error {
	record, err := db.AwaitOn(s.repo.FindOneById(ctx, identifier))(ctx)
	if err != nil {
		logger.Error("Failed fetching otp", zap.String("email", identifier), zap.Error(err))
		return autherr.New(autherr.StoreUnavailable, "", err)
	}

	switch {
	case record == nil:
		return autherr.ErrNotFound
	case record.Consumed:
		return autherr.ErrAlreadyConsumed
	case record.IsExpired(s.now()):
		return autherr.ErrExpired
	case subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1:
		return autherr.ErrMismatch
	}

	consumed, err := db.AwaitOn(s.repo.Consume(ctx, identifier, code))(ctx)
	if err != nil {
		logger.Error("Failed consuming otp", zap.String("email", identifier), zap.Error(err))
		return autherr.New(autherr.StoreUnavailable, "", err)
	}
	if consumed {
		return nil
	}

	// lost the race: either another verify consumed it or a resend replaced it
	latest, err := db.AwaitOn(s.repo.FindOneById(ctx, identifier))(ctx)
	if err == nil && latest != nil && !latest.Consumed && latest.Code != code {
		return autherr.ErrMismatch
	}
	return autherr.ErrAlreadyConsumed
}

func (s *OtpStore) Invalidate(ctx context.Context, identifier string) error {
	if err := db.AwaitErr(ctx, s.repo.DeleteById(ctx, models.NormalizeEmail(identifier))); err != nil {
		return autherr.New(autherr.StoreUnavailable, "", err)
	}
	return nil
}

// Purge drops expired and consumed records.
func (s *OtpStore) Purge(ctx context.Context) (int64, error) {
	return db.AwaitOn(s.repo.DeleteExpired(ctx, s.now()))(ctx)
}
