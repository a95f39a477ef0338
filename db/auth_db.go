package db

import (
	"context"
	"time"

	"github.com/Kotlang/clinicAuthGo/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type AuthDbInterface interface {
	Otp(clinic string) OtpRepositoryInterface
	Patient(clinic string) PatientRepositoryInterface
	Appointment(clinic string) AppointmentRepositoryInterface
}

type AuthDb struct {
	client *mongo.Client
}

func ProvideAuthDb(ctx context.Context, mongoUri string) (*AuthDb, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoUri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("Failed pinging mongo", zap.Error(err))
		return nil, err
	}

	return &AuthDb{client: client}, nil
}

func (a *AuthDb) database(clinic string) *mongo.Database {
	return a.client.Database(clinic + "_clinic")
}

func (a *AuthDb) Otp(clinic string) OtpRepositoryInterface {
	return &OtpRepository{collection: a.database(clinic).Collection("otp")}
}

func (a *AuthDb) Patient(clinic string) PatientRepositoryInterface {
	return &PatientRepository{collection: a.database(clinic).Collection("patient")}
}

func (a *AuthDb) Appointment(clinic string) AppointmentRepositoryInterface {
	return &AppointmentRepository{
		collection: a.database(clinic).Collection("appointment"),
		counters:   a.database(clinic).Collection("appointment_counter"),
	}
}

// EnsureIndexes creates the unique email index patients rely on and the TTL
// index that lets mongo drop stale otp records on its own.
func (a *AuthDb) EnsureIndexes(ctx context.Context, clinic string) error {
	_, err := a.database(clinic).Collection("patient").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = a.database(clinic).Collection("otp").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32((10 * time.Minute).Seconds())),
	})
	if err != nil {
		return err
	}

	_, err = a.database(clinic).Collection("appointment").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}},
	})
	return err
}

func (a *AuthDb) Disconnect(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
