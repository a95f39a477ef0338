package db

import (
	"context"
	"errors"
	"time"

	"github.com/Kotlang/clinicAuthGo/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OtpRepositoryInterface interface {
	// Save creates or overwrites the record keyed by its identifier.
	Save(ctx context.Context, otp *models.OtpModel) chan error
	// FindOneById yields nil when no record exists.
	FindOneById(ctx context.Context, id string) (chan *models.OtpModel, chan error)
	// Consume flips consumed to true only if the record still holds code and
	// is unconsumed. It yields false when another caller got there first.
	Consume(ctx context.Context, id, code string) (chan bool, chan error)
	DeleteById(ctx context.Context, id string) chan error
	DeleteExpired(ctx context.Context, before time.Time) (chan int64, chan error)
}

type OtpRepository struct {
	collection *mongo.Collection
}

func (r *OtpRepository) Save(ctx context.Context, otp *models.OtpModel) chan error {
	errChan := make(chan error, 1)

	go func() {
		_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": otp.Id()}, otp, options.Replace().SetUpsert(true))
		errChan <- err
	}()
	return errChan
}

func (r *OtpRepository) FindOneById(ctx context.Context, id string) (chan *models.OtpModel, chan error) {
	resultChan, errChan := resultPair[*models.OtpModel]()

	go func() {
		otp := &models.OtpModel{}
		err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(otp)
		if errors.Is(err, mongo.ErrNoDocuments) {
			resultChan <- nil
			return
		}
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- otp
	}()
	return resultChan, errChan
}

func (r *OtpRepository) Consume(ctx context.Context, id, code string) (chan bool, chan error) {
	resultChan, errChan := resultPair[bool]()

	go func() {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "code": code, "consumed": false},
			bson.M{"$set": bson.M{"consumed": true}})
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- res.ModifiedCount == 1
	}()
	return resultChan, errChan
}

func (r *OtpRepository) DeleteById(ctx context.Context, id string) chan error {
	errChan := make(chan error, 1)

	go func() {
		_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		errChan <- err
	}()
	return errChan
}

func (r *OtpRepository) DeleteExpired(ctx context.Context, before time.Time) (chan int64, chan error) {
	resultChan, errChan := resultPair[int64]()

	go func() {
		res, err := r.collection.DeleteMany(ctx, bson.M{"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$lt": before}},
			bson.M{"consumed": true},
		}})
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- res.DeletedCount
	}()
	return resultChan, errChan
}
