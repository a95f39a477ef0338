package main

import (
	"context"
	"time"

	"github.com/Kotlang/clinicAuthGo/appconfig"
	"github.com/Kotlang/clinicAuthGo/db"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/otp"
	"github.com/Kotlang/clinicAuthGo/service"
	"github.com/Kotlang/clinicAuthGo/session"
	"go.uber.org/zap"
)

type Inject struct {
	Config *appconfig.AppConfig

	AuthDb   *db.AuthDb
	Storage  *session.SQLiteStorage
	Sessions *session.Store
	OtpStore *otp.OtpStore
	Sweeper  *otp.Sweeper
	Email    *otp.EmailClient

	LoginService       *service.LoginService
	ProfileService     *service.ProfileService
	AppointmentService *service.AppointmentService
}

func NewInject(ctx context.Context, cfg *appconfig.AppConfig, onTick func(time.Duration)) (*Inject, error) {
	inj := &Inject{Config: cfg}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.NetworkTimeout)
	defer cancel()

	authDb, err := db.ProvideAuthDb(connectCtx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	inj.AuthDb = authDb
	if err := authDb.EnsureIndexes(connectCtx, cfg.Clinic); err != nil {
		logger.Warn("Failed ensuring indexes", zap.Error(err))
	}

	inj.Storage, err = session.OpenSQLiteStorage(ctx, cfg.DeviceStoragePath)
	if err != nil {
		inj.Close(ctx)
		return nil, err
	}
	inj.Sessions = session.ProvideStore(inj.Storage)

	var otpRepo db.OtpRepositoryInterface = authDb.Otp(cfg.Clinic)
	if cfg.OtpStore == "memory" {
		otpRepo = otp.NewMemoryOtpRepository()
	}
	inj.OtpStore = otp.ProvideOtpStore(otpRepo, cfg.OtpTTL)

	if cfg.OtpStore == "memory" {
		inj.Sweeper, err = otp.NewSweeper(inj.OtpStore, time.Minute)
		if err != nil {
			inj.Close(ctx)
			return nil, err
		}
		inj.Sweeper.Start()
	}

	inj.Email = otp.ProvideEmailClient(provideTransport(cfg), cfg.ClinicName, cfg.OtpTTL)

	secret := []byte(cfg.AccessSecret)
	inj.LoginService = service.ProvideLoginService(authDb, inj.OtpStore, inj.Email, inj.Sessions, service.LoginConfig{
		Clinic:         cfg.Clinic,
		Secret:         secret,
		CodeTTL:        cfg.OtpTTL,
		NetworkTimeout: cfg.NetworkTimeout,
		OnTick:         onTick,
	})
	inj.ProfileService = service.ProvideProfileService(authDb, inj.Sessions, cfg.Clinic, secret, cfg.NetworkTimeout)
	inj.AppointmentService = service.ProvideAppointmentService(authDb, cfg.Clinic, secret, cfg.NetworkTimeout)

	return inj, nil
}

func provideTransport(cfg *appconfig.AppConfig) otp.EmailTransport {
	switch cfg.EmailTransport {
	case "smtp":
		return otp.NewSmtpTransport(otp.SmtpConfig{
			Host:      cfg.SmtpHost,
			Port:      cfg.SmtpPort,
			Username:  cfg.SmtpUsername,
			Password:  cfg.SmtpPassword,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		})
	case "sendgrid":
		return otp.NewSendgridTransport(cfg.SendgridApiKey, cfg.FromEmail, cfg.FromName)
	}
	return otp.NewDevTransport()
}

// Close tears everything down in reverse order of construction.
func (inj *Inject) Close(ctx context.Context) {
	if inj.LoginService != nil {
		inj.LoginService.Close()
	}
	if inj.Sweeper != nil {
		inj.Sweeper.Stop()
	}
	if inj.Storage != nil {
		if err := inj.Storage.Close(); err != nil {
			logger.Error("Failed closing device storage", zap.Error(err))
		}
	}
	if inj.AuthDb != nil {
		if err := inj.AuthDb.Disconnect(ctx); err != nil {
			logger.Error("Failed disconnecting mongo", zap.Error(err))
		}
	}
}
