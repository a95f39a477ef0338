package db

import (
	"context"
	"errors"

	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type AppointmentRepositoryInterface interface {
	Save(ctx context.Context, appointment *models.AppointmentModel) chan error
	FindOneById(ctx context.Context, id string) (chan *models.AppointmentModel, chan error)
	FindByPatient(ctx context.Context, patientId string) (chan []models.AppointmentModel, chan error)
	// NextTokenNumber hands out the clinic's next queue number for date.
	NextTokenNumber(ctx context.Context, date string) (chan int, chan error)
}

type AppointmentRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

type tokenCounter struct {
	Date  string `bson:"_id"`
	Value int    `bson:"value"`
}

func (r *AppointmentRepository) Save(ctx context.Context, appointment *models.AppointmentModel) chan error {
	errChan := make(chan error, 1)

	go func() {
		if err := models.Validate(appointment); err != nil {
			errChan <- err
			return
		}
		_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": appointment.Id()}, appointment, options.Replace().SetUpsert(true))
		errChan <- err
	}()
	return errChan
}

func (r *AppointmentRepository) FindOneById(ctx context.Context, id string) (chan *models.AppointmentModel, chan error) {
	resultChan, errChan := resultPair[*models.AppointmentModel]()

	go func() {
		appointment := &models.AppointmentModel{}
		err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(appointment)
		if errors.Is(err, mongo.ErrNoDocuments) {
			resultChan <- nil
			return
		}
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- appointment
	}()
	return resultChan, errChan
}

func (r *AppointmentRepository) FindByPatient(ctx context.Context, patientId string) (chan []models.AppointmentModel, chan error) {
	resultChan, errChan := resultPair[[]models.AppointmentModel]()

	go func() {
		sort := bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}
		cursor, err := r.collection.Find(ctx, bson.M{"patientId": patientId}, options.Find().SetSort(sort))
		if err != nil {
			errChan <- err
			return
		}
		defer cursor.Close(ctx)

		appointments := []models.AppointmentModel{}
		for cursor.Next(ctx) {
			appointment := models.AppointmentModel{}
			if err := cursor.Decode(&appointment); err != nil {
				errChan <- err
				return
			}
			// skip malformed documents rather than failing the whole listing
			if err := models.Validate(&appointment); err != nil {
				logger.Warn("Skipping malformed appointment", zap.String("id", appointment.AppointmentId), zap.Error(err))
				continue
			}
			appointments = append(appointments, appointment)
		}
		if err := cursor.Err(); err != nil {
			errChan <- err
			return
		}
		resultChan <- appointments
	}()
	return resultChan, errChan
}

func (r *AppointmentRepository) NextTokenNumber(ctx context.Context, date string) (chan int, chan error) {
	resultChan, errChan := resultPair[int]()

	go func() {
		counter := &tokenCounter{}
		err := r.counters.FindOneAndUpdate(ctx,
			bson.M{"_id": date},
			bson.M{"$inc": bson.M{"value": 1}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(counter)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- counter.Value
	}()
	return resultChan, errChan
}
