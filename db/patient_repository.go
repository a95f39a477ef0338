package db

import (
	"context"
	"errors"

	"github.com/Kotlang/clinicAuthGo/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PatientRepositoryInterface interface {
	// Save replaces the patient document by id. Email must already match
	// the stored one; callers never change it.
	Save(ctx context.Context, patient *models.PatientModel) chan error
	// CreateIfAbsent inserts patient unless one with the same email exists,
	// and yields whichever record is stored afterwards.
	CreateIfAbsent(ctx context.Context, patient *models.PatientModel) (chan *models.PatientModel, chan error)
	// FindOneById and FindOneByEmail yield nil when no record exists.
	FindOneById(ctx context.Context, id string) (chan *models.PatientModel, chan error)
	FindOneByEmail(ctx context.Context, email string) (chan *models.PatientModel, chan error)
}

type PatientRepository struct {
	collection *mongo.Collection
}

func (r *PatientRepository) Save(ctx context.Context, patient *models.PatientModel) chan error {
	errChan := make(chan error, 1)

	go func() {
		if err := models.Validate(patient); err != nil {
			errChan <- err
			return
		}
		res, err := r.collection.ReplaceOne(ctx,
			bson.M{"_id": patient.Id(), "email": patient.Email},
			patient)
		if err == nil && res.MatchedCount == 0 {
			err = mongo.ErrNoDocuments
		}
		errChan <- err
	}()
	return errChan
}

func (r *PatientRepository) CreateIfAbsent(ctx context.Context, patient *models.PatientModel) (chan *models.PatientModel, chan error) {
	resultChan, errChan := resultPair[*models.PatientModel]()

	go func() {
		patient.Id()
		if err := models.Validate(patient); err != nil {
			errChan <- err
			return
		}

		stored := &models.PatientModel{}
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"email": patient.Email},
			bson.M{"$setOnInsert": patient},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(stored)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- stored
	}()
	return resultChan, errChan
}

func (r *PatientRepository) FindOneById(ctx context.Context, id string) (chan *models.PatientModel, chan error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PatientRepository) FindOneByEmail(ctx context.Context, email string) (chan *models.PatientModel, chan error) {
	return r.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *PatientRepository) findOne(ctx context.Context, filter bson.M) (chan *models.PatientModel, chan error) {
	resultChan, errChan := resultPair[*models.PatientModel]()

	go func() {
		patient := &models.PatientModel{}
		err := r.collection.FindOne(ctx, filter).Decode(patient)
		if errors.Is(err, mongo.ErrNoDocuments) {
			resultChan <- nil
			return
		}
		if err != nil {
			errChan <- err
			return
		}
		if err := models.Validate(patient); err != nil {
			errChan <- err
			return
		}
		resultChan <- patient
	}()
	return resultChan, errChan
}
