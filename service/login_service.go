package service

import (
	"context"
	"sync"
	"time"

	"github.com/Kotlang/clinicAuthGo/auth"
	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/db"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/metrics"
	"github.com/Kotlang/clinicAuthGo/models"
	"github.com/Kotlang/clinicAuthGo/otp"
	"github.com/Kotlang/clinicAuthGo/session"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

const DefaultNetworkTimeout = 12 * time.Second

type LoginConfig struct {
	Clinic         string
	Secret         []byte
	CodeTTL        time.Duration
	NetworkTimeout time.Duration
	// OnTick receives the remaining code lifetime once per second while a
	// code is outstanding.
	OnTick func(remaining time.Duration)
	Now    func() time.Time
}

// LoginService drives the email code login of one device:
// Idle -> CodeSent -> Verifying -> Authenticated | RegistrationRequired.
// Operations never overlap; a call made while another is in flight is
// rejected with Busy.
type LoginService struct {
	db       db.AuthDbInterface
	otp      otp.OtpStoreInterface
	email    otp.EmailClientInterface
	sessions session.StoreInterface

	clinic    string
	secret    []byte
	ttl       time.Duration
	timeout   time.Duration
	countdown *Countdown

	mu            sync.Mutex
	state         State
	pendingEmail  string
	verifiedEmail string
	inFlight      bool
	// epoch advances on logout so operations started before it cannot
	// move the state machine afterwards
	epoch uint64
}

func ProvideLoginService(
	authDb db.AuthDbInterface,
	otpStore otp.OtpStoreInterface,
	emailClient otp.EmailClientInterface,
	sessions session.StoreInterface,
	config LoginConfig) *LoginService {

	if config.CodeTTL <= 0 {
		config.CodeTTL = otp.DefaultTTL
	}
	if config.NetworkTimeout <= 0 {
		config.NetworkTimeout = DefaultNetworkTimeout
	}

	return &LoginService{
		db:        authDb,
		otp:       otpStore,
		email:     emailClient,
		sessions:  sessions,
		clinic:    config.Clinic,
		secret:    config.Secret,
		ttl:       config.CodeTTL,
		timeout:   config.NetworkTimeout,
		countdown: NewCountdown(config.Now, time.Second, config.OnTick),
		state:     Idle,
	}
}

// Init restores a persisted session, if any. Call once on app start.
func (s *LoginService) Init(ctx context.Context) Result {
	epoch, err := s.begin(Idle)
	if err != nil {
		return failure(err, s.State())
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	restored, err := s.sessions.Restore(callCtx)
	if err != nil {
		logger.Error("Failed restoring session", zap.Error(err))
		s.end(epoch, Idle)
		return failure(err, s.State())
	}
	if restored == nil {
		s.end(epoch, Idle)
		return Result{Success: true, State: Idle}
	}

	metrics.Logins.WithLabelValues("restored").Inc()
	s.end(epoch, Authenticated)
	return Result{
		Success: true,
		State:   Authenticated,
		Email:   restored.Patient.Email,
		Token:   restored.Token,
		Patient: restored.Patient,
	}
}

// SendCode issues a code for email and mails it. From CodeSent it behaves
// like Resend.
func (s *LoginService) SendCode(ctx context.Context, email string) Result {
	if s.State() == CodeSent {
		return s.Resend(ctx, email)
	}

	email = models.NormalizeEmail(email)
	if !s.email.IsValid(email) {
		return failure(autherr.ErrInvalidAddress, s.State())
	}

	epoch, err := s.begin(Idle)
	if err != nil {
		return failure(err, s.State())
	}

	res, err := s.issueAndSend(ctx, email)
	if err != nil {
		s.end(epoch, Idle)
		return failure(err, s.State())
	}

	if !s.codeSent(epoch, email) {
		return failure(autherr.ErrInvalidState, s.State())
	}
	return res
}

// Resend issues and mails a new code once the previous one has run out.
// An empty email reuses the pending address.
func (s *LoginService) Resend(ctx context.Context, email string) Result {
	s.mu.Lock()
	if email == "" {
		email = s.pendingEmail
	}
	s.mu.Unlock()

	email = models.NormalizeEmail(email)
	if !s.email.IsValid(email) {
		return failure(autherr.ErrInvalidAddress, s.State())
	}

	if remaining := s.countdown.Remaining(); remaining > 0 {
		res := failure(autherr.ErrCooldownActive, s.State())
		res.Remaining = remaining
		return res
	}

	epoch, err := s.begin(CodeSent)
	if err != nil {
		return failure(err, s.State())
	}

	res, err := s.issueAndSend(ctx, email)
	if err != nil {
		s.end(epoch, CodeSent)
		return failure(err, s.State())
	}

	if !s.codeSent(epoch, email) {
		return failure(autherr.ErrInvalidState, s.State())
	}
	return res
}

func (s *LoginService) issueAndSend(ctx context.Context, email string) (Result, error) {
	issueCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	record, err := s.otp.Issue(issueCtx, email)
	if err != nil {
		return Result{}, err
	}

	sendCtx, cancelSend := context.WithTimeout(ctx, s.timeout)
	defer cancelSend()

	if err := s.email.SendOtp(sendCtx, email, record.Code); err != nil {
		// the code never reached the user, so it must not stay valid
		invalidateCtx, cancelInvalidate := context.WithTimeout(ctx, s.timeout)
		defer cancelInvalidate()
		if invalidateErr := s.otp.Invalidate(invalidateCtx, email); invalidateErr != nil {
			logger.Warn("Failed invalidating undelivered otp", zap.String("email", email), zap.Error(invalidateErr))
		}
		return Result{}, err
	}

	return Result{
		Success:   true,
		State:     CodeSent,
		Email:     email,
		ExpiresAt: record.ExpiresAt,
		Remaining: s.ttl,
	}, nil
}

// codeSent arms the countdown and enters CodeSent. It reports false when a
// logout overtook the send.
func (s *LoginService) codeSent(epoch uint64, email string) bool {
	s.countdown.Start(s.ttl)

	s.mu.Lock()
	if epoch == s.epoch {
		s.pendingEmail = email
		s.verifiedEmail = ""
	}
	s.mu.Unlock()

	if !s.end(epoch, CodeSent) {
		s.countdown.Stop()
		return false
	}
	return true
}

// SubmitCode verifies code for the pending email. Failed attempts keep the
// countdown running.
func (s *LoginService) SubmitCode(ctx context.Context, code string) Result {
	if !otp.IsWellFormed(code) {
		return failure(autherr.New(autherr.Mismatch, "Please enter the 6-digit code.", nil), s.State())
	}

	epoch, err := s.begin(CodeSent)
	if err != nil {
		return failure(err, s.State())
	}

	s.mu.Lock()
	email := s.pendingEmail
	s.state = Verifying
	s.mu.Unlock()

	verifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.otp.Verify(verifyCtx, email, code); err != nil {
		s.end(epoch, CodeSent)
		return failure(err, s.State())
	}

	// the code is spent; a lookup failure below can only be recovered by a
	// fresh code, so the cooldown no longer applies
	s.countdown.Stop()

	lookupCtx, cancelLookup := context.WithTimeout(ctx, s.timeout)
	defer cancelLookup()

	patient, err := db.AwaitOn(s.db.Patient(s.clinic).FindOneByEmail(lookupCtx, email))(lookupCtx)
	if err != nil {
		logger.Error("Failed fetching patient", zap.String("email", email), zap.Error(err))
		s.end(epoch, CodeSent)
		return failure(autherr.Wrap(autherr.StoreUnavailable, err), s.State())
	}

	if patient == nil {
		if !s.endVerified(epoch, email) {
			return failure(autherr.ErrInvalidState, s.State())
		}

		logger.Info("Registration required", zap.String("email", email))
		return Result{Success: true, State: RegistrationRequired, Email: email}
	}

	res, err := s.authenticate(ctx, patient)
	if err != nil {
		s.end(epoch, CodeSent)
		return failure(err, s.State())
	}

	if !s.end(epoch, Authenticated) {
		return s.discard(ctx)
	}
	metrics.Logins.WithLabelValues("existing").Inc()
	return res
}

// CompleteRegistration creates the patient for the email verified in the
// previous step and signs them in.
func (s *LoginService) CompleteRegistration(ctx context.Context, profile models.ProfilePatch) Result {
	if err := ValidateRegistration(&profile); err != nil {
		return failure(err, s.State())
	}

	epoch, err := s.begin(RegistrationRequired)
	if err != nil {
		return failure(err, s.State())
	}

	s.mu.Lock()
	email := s.verifiedEmail
	s.mu.Unlock()

	patient := &models.PatientModel{Email: email, CreatedOn: time.Now().Unix()}
	if err := copier.CopyWithOption(patient, &profile, copier.Option{IgnoreEmpty: true}); err != nil {
		s.end(epoch, RegistrationRequired)
		return failure(autherr.New(autherr.Unknown, "", err), s.State())
	}
	if err := models.Validate(patient); err != nil {
		s.end(epoch, RegistrationRequired)
		return failure(autherr.New(autherr.InvalidInput, "", err), s.State())
	}

	createCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := db.AwaitOn(s.db.Patient(s.clinic).CreateIfAbsent(createCtx, patient))(createCtx)
	if err != nil {
		logger.Error("Failed creating patient", zap.String("email", email), zap.Error(err))
		s.end(epoch, RegistrationRequired)
		return failure(autherr.Wrap(autherr.StoreUnavailable, err), s.State())
	}

	res, err := s.authenticate(ctx, stored)
	if err != nil {
		s.end(epoch, RegistrationRequired)
		return failure(err, s.State())
	}

	s.mu.Lock()
	s.verifiedEmail = ""
	s.mu.Unlock()

	if !s.end(epoch, Authenticated) {
		return s.discard(ctx)
	}
	metrics.Logins.WithLabelValues("registration").Inc()
	logger.Info("Registered patient", zap.String("patientId", stored.PatientId))
	return res
}

func (s *LoginService) authenticate(ctx context.Context, patient *models.PatientModel) (Result, error) {
	token, err := auth.GetToken(s.secret, s.clinic, patient.PatientId)
	if err != nil {
		logger.Error("Failed signing session token", zap.Error(err))
		return Result{}, autherr.New(autherr.Unknown, "", err)
	}

	persistCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.Persist(persistCtx, patient, token); err != nil {
		return Result{}, err
	}

	return Result{
		Success: true,
		State:   Authenticated,
		Email:   patient.Email,
		Token:   token,
		Patient: patient,
	}, nil
}

// discard drops a session persisted by an operation that a logout overtook.
func (s *LoginService) discard(ctx context.Context) Result {
	clearCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.Clear(clearCtx); err != nil {
		logger.Error("Failed discarding stale session", zap.Error(err))
	}
	return failure(autherr.ErrInvalidState, s.State())
}

// Logout clears the session and returns to Idle from any state.
func (s *LoginService) Logout(ctx context.Context) Result {
	s.countdown.Stop()

	s.mu.Lock()
	s.epoch++
	s.state = Idle
	s.inFlight = false
	s.pendingEmail = ""
	s.verifiedEmail = ""
	s.mu.Unlock()

	clearCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.Clear(clearCtx); err != nil {
		return failure(err, Idle)
	}
	return Result{Success: true, State: Idle}
}

// Close stops the countdown. The service must not be used afterwards.
func (s *LoginService) Close() {
	s.countdown.Stop()
}

func (s *LoginService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PendingEmail is the address the outstanding code was sent to.
func (s *LoginService) PendingEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingEmail
}

func (s *LoginService) Remaining() time.Duration {
	return s.countdown.Remaining()
}

func (s *LoginService) IsTimerExpired() bool {
	return s.countdown.Expired()
}

// begin claims the single in-flight slot, requiring the given state.
func (s *LoginService) begin(required State) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return 0, autherr.ErrBusy
	}
	if s.state != required {
		return 0, autherr.ErrInvalidState
	}
	s.inFlight = true
	return s.epoch, nil
}

// endVerified moves to RegistrationRequired carrying email, unless a logout
// happened meanwhile.
func (s *LoginService) endVerified(epoch uint64, email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}
	s.verifiedEmail = email
	s.state = RegistrationRequired
	s.inFlight = false
	return true
}

// end releases the in-flight slot and moves to next, unless a logout
// happened meanwhile. It reports whether the transition was applied.
func (s *LoginService) end(epoch uint64, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}
	s.state = next
	s.inFlight = false
	return true
}
