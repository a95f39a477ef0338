package mocks

import (
	"context"
	"sync/atomic"

	"github.com/Kotlang/clinicAuthGo/models"
	"github.com/Kotlang/clinicAuthGo/otp"
)

// CountingOtpStore forwards to an OtpStore and counts calls reaching it.
type CountingOtpStore struct {
	Inner otp.OtpStoreInterface

	issues   atomic.Int32
	verifies atomic.Int32
}

func (s *CountingOtpStore) Issue(ctx context.Context, identifier string) (*models.OtpModel, error) {
	s.issues.Add(1)
	return s.Inner.Issue(ctx, identifier)
}

func (s *CountingOtpStore) Verify(ctx context.Context, identifier, code string) error {
	s.verifies.Add(1)
	return s.Inner.Verify(ctx, identifier, code)
}

func (s *CountingOtpStore) Invalidate(ctx context.Context, identifier string) error {
	return s.Inner.Invalidate(ctx, identifier)
}

func (s *CountingOtpStore) Issues() int   { return int(s.issues.Load()) }
func (s *CountingOtpStore) Verifies() int { return int(s.verifies.Load()) }
