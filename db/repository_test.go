package db

import (
	"context"
	"testing"
	"time"

	"github.com/Kotlang/clinicAuthGo/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// The repositories run against the driver's mock deployment: each test
// queues the server replies and inspects the command the driver sent.

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestOtpRepository_Consume(t *testing.T) {
	mt := newMockT(t)

	mt.Run("first caller wins", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		repo := &OtpRepository{collection: mt.Coll}

		consumed, err := AwaitOn(repo.Consume(context.Background(), "user@example.com", "482913"))(context.Background())
		require.NoError(mt, err)
		assert.True(mt, consumed)

		query := mt.GetStartedEvent().Command.Lookup("updates").Array().Lookup("0", "q")
		assert.Equal(mt, "user@example.com", query.Document().Lookup("_id").StringValue())
		assert.Equal(mt, "482913", query.Document().Lookup("code").StringValue())
		assert.False(mt, query.Document().Lookup("consumed").Boolean())
	})

	mt.Run("already consumed", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		repo := &OtpRepository{collection: mt.Coll}

		consumed, err := AwaitOn(repo.Consume(context.Background(), "user@example.com", "482913"))(context.Background())
		require.NoError(mt, err)
		assert.False(mt, consumed)
	})
}

func TestOtpRepository_FindOneById(t *testing.T) {
	mt := newMockT(t)

	mt.Run("found", func(mt *mtest.T) {
		expiresAt := time.Date(2024, 5, 1, 9, 33, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sunrise_clinic.otp", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "user@example.com"},
			{Key: "code", Value: "482913"},
			{Key: "expiresAt", Value: expiresAt},
			{Key: "consumed", Value: false},
		}))
		repo := &OtpRepository{collection: mt.Coll}

		record, err := AwaitOn(repo.FindOneById(context.Background(), "user@example.com"))(context.Background())
		require.NoError(mt, err)
		require.NotNil(mt, record)
		assert.Equal(mt, "482913", record.Code)
		assert.True(mt, record.ExpiresAt.Equal(expiresAt))
	})

	mt.Run("absent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sunrise_clinic.otp", mtest.FirstBatch))
		repo := &OtpRepository{collection: mt.Coll}

		record, err := AwaitOn(repo.FindOneById(context.Background(), "user@example.com"))(context.Background())
		require.NoError(mt, err)
		assert.Nil(mt, record)
	})
}

func TestPatientRepository_CreateIfAbsent(t *testing.T) {
	mt := newMockT(t)

	mt.Run("returns the stored record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "p-existing"},
			{Key: "email", Value: "user@example.com"},
			{Key: "name", Value: "Asha Rao"},
		}}))
		repo := &PatientRepository{collection: mt.Coll}

		stored, err := AwaitOn(repo.CreateIfAbsent(context.Background(), &models.PatientModel{
			Email: "user@example.com",
			Name:  "Someone Else",
		}))(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, "p-existing", stored.PatientId)
		assert.Equal(mt, "Asha Rao", stored.Name)

		command := mt.GetStartedEvent().Command
		assert.Equal(mt, "user@example.com", command.Lookup("query", "email").StringValue())
		assert.True(mt, command.Lookup("upsert").Boolean())
		assert.Equal(mt, "user@example.com", command.Lookup("update", "$setOnInsert", "email").StringValue())
	})

	mt.Run("invalid record never reaches the server", func(mt *mtest.T) {
		repo := &PatientRepository{collection: mt.Coll}

		_, err := AwaitOn(repo.CreateIfAbsent(context.Background(), &models.PatientModel{Email: "nope"}))(context.Background())
		assert.Error(mt, err)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestPatientRepository_Save_UnknownPatient(t *testing.T) {
	mt := newMockT(t)

	mt.Run("no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		repo := &PatientRepository{collection: mt.Coll}

		err := AwaitErr(context.Background(), repo.Save(context.Background(), &models.PatientModel{
			PatientId: "p-1",
			Email:     "user@example.com",
		}))
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})
}

func TestAppointmentRepository_NextTokenNumber(t *testing.T) {
	mt := newMockT(t)

	mt.Run("increments the date counter", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "2024-05-02"},
			{Key: "value", Value: 4},
		}}))
		repo := &AppointmentRepository{collection: mt.Coll, counters: mt.Coll}

		next, err := AwaitOn(repo.NextTokenNumber(context.Background(), "2024-05-02"))(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, 4, next)

		command := mt.GetStartedEvent().Command
		assert.Equal(mt, "2024-05-02", command.Lookup("query", "_id").StringValue())
		assert.Equal(mt, int32(1), command.Lookup("update", "$inc", "value").Int32())
		assert.True(mt, command.Lookup("new").Boolean())
	})
}

func TestAppointmentRepository_FindByPatient_SkipsMalformed(t *testing.T) {
	mt := newMockT(t)

	mt.Run("skips malformed", func(mt *mtest.T) {
		valid := bson.D{
			{Key: "_id", Value: "a-1"},
			{Key: "patientId", Value: "p-1"},
			{Key: "doctorId", Value: "d-1"},
			{Key: "date", Value: "2024-05-02"},
			{Key: "time", Value: "10:30"},
			{Key: "status", Value: "scheduled"},
			{Key: "tokenNumber", Value: 1},
		}
		malformed := bson.D{
			{Key: "_id", Value: "a-2"},
			{Key: "patientId", Value: "p-1"},
			{Key: "status", Value: "lost"},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sunrise_clinic.appointment", mtest.FirstBatch, valid, malformed))
		repo := &AppointmentRepository{collection: mt.Coll, counters: mt.Coll}

		appointments, err := AwaitOn(repo.FindByPatient(context.Background(), "p-1"))(context.Background())
		require.NoError(mt, err)
		require.Len(mt, appointments, 1)
		assert.Equal(mt, "a-1", appointments[0].AppointmentId)
	})
}
