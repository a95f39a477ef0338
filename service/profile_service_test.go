package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kotlang/clinicAuthGo/auth"
	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/mocks"
	"github.com/Kotlang/clinicAuthGo/models"
	"github.com/Kotlang/clinicAuthGo/service"
	"github.com/Kotlang/clinicAuthGo/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture(t *testing.T) (*service.ProfileService, *mocks.MockAuthDb, *session.Store, string) {
	t.Helper()

	authDb := mocks.NewMockAuthDb()
	patient := models.PatientModel{
		PatientId:  "p-1",
		Email:      testEmail,
		Name:       "Asha Rao",
		Phone:      "9876543210",
		BloodGroup: "O+",
	}
	authDb.PatientRepo(testClinic).Add(patient)

	token, err := auth.GetToken(testSecret, testClinic, patient.PatientId)
	require.NoError(t, err)

	sessions := session.ProvideStore(mocks.NewDeviceStorageMock())
	require.NoError(t, sessions.Persist(context.Background(), &patient, token))

	svc := service.ProvideProfileService(authDb, sessions, testClinic, testSecret, time.Second)
	return svc, authDb, sessions, token
}

func TestGetProfile(t *testing.T) {
	svc, _, _, token := newProfileFixture(t)

	patient, err := svc.GetProfile(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", patient.Name)
	assert.Equal(t, testEmail, patient.Email)
}

func TestGetProfile_Unauthorized(t *testing.T) {
	svc, _, _, _ := newProfileFixture(t)
	otherClinicToken, err := auth.GetToken(testSecret, "other", "p-1")
	require.NoError(t, err)
	forged, err := auth.GetToken([]byte("wrong"), testClinic, "p-1")
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", otherClinicToken, forged} {
		_, err := svc.GetProfile(context.Background(), token)
		assert.ErrorIs(t, err, autherr.ErrUnauthorized)
	}
}

func TestGetProfile_UnknownPatient(t *testing.T) {
	svc, _, _, _ := newProfileFixture(t)
	token, err := auth.GetToken(testSecret, testClinic, "p-404")
	require.NoError(t, err)

	_, err = svc.GetProfile(context.Background(), token)

	assert.ErrorIs(t, err, autherr.ErrNotFound)
}

func TestUpdateProfile_KeepsUntouchedFields(t *testing.T) {
	svc, authDb, sessions, token := newProfileFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, token, models.ProfilePatch{
		Address:     "12 Lake Road",
		DateOfBirth: "1990-04-12",
	})

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", updated.Name)
	assert.Equal(t, "9876543210", updated.Phone)
	assert.Equal(t, "12 Lake Road", updated.Address)
	assert.Equal(t, "1990-04-12", updated.DateOfBirth)
	assert.Equal(t, testEmail, updated.Email)
	assert.Equal(t, "p-1", updated.PatientId)
	assert.NotZero(t, updated.UpdatedOn)

	stored, err := svc.GetProfile(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "12 Lake Road", stored.Address)
	assert.Equal(t, 1, authDb.PatientRepo(testClinic).Count())

	// the device copy follows
	assert.Equal(t, "12 Lake Road", sessions.Current().Patient.Address)
}

func TestUpdateProfile_Invalid(t *testing.T) {
	svc, _, _, token := newProfileFixture(t)

	var cases = []struct {
		desc  string
		patch models.ProfilePatch
	}{
		{"blood group", models.ProfilePatch{BloodGroup: "C"}},
		{"birth date", models.ProfilePatch{DateOfBirth: "12-04-1990"}},
		{"phone", models.ProfilePatch{Phone: "12"}},
	}
	for _, testData := range cases {
		t.Run(testData.desc, func(t *testing.T) {
			_, err := svc.UpdateProfile(context.Background(), token, testData.patch)
			assert.ErrorIs(t, err, autherr.ErrInvalidInput)
		})
	}
}

func TestUpdateProfile_StoreFailure(t *testing.T) {
	svc, authDb, _, token := newProfileFixture(t)
	authDb.PatientRepo(testClinic).SetErr(errors.New("connection reset"))

	_, err := svc.UpdateProfile(context.Background(), token, models.ProfilePatch{Name: "Asha R"})

	assert.ErrorIs(t, err, autherr.ErrStoreUnavailable)
}
