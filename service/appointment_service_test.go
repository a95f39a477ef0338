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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patientToken(t *testing.T, patientId string) string {
	t.Helper()
	token, err := auth.GetToken(testSecret, testClinic, patientId)
	require.NoError(t, err)
	return token
}

func TestBook_AssignsTokenNumbersPerDate(t *testing.T) {
	authDb := mocks.NewMockAuthDb()
	svc := service.ProvideAppointmentService(authDb, testClinic, testSecret, time.Second)
	ctx := context.Background()
	asha, ravi := patientToken(t, "p-1"), patientToken(t, "p-2")

	first, err := svc.Book(ctx, asha, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "10:30", Reason: "fever"})
	require.NoError(t, err)
	second, err := svc.Book(ctx, ravi, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "11:00"})
	require.NoError(t, err)
	otherDay, err := svc.Book(ctx, asha, service.BookingRequest{DoctorId: "d-2", Date: "2024-05-03", Time: "09:00"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.TokenNumber)
	assert.Equal(t, 2, second.TokenNumber)
	assert.Equal(t, 1, otherDay.TokenNumber)
	assert.Equal(t, models.AppointmentScheduled, first.Status)
	assert.Equal(t, "p-1", first.PatientId)
	assert.NotEmpty(t, first.AppointmentId)
}

func TestBook_Invalid(t *testing.T) {
	authDb := mocks.NewMockAuthDb()
	svc := service.ProvideAppointmentService(authDb, testClinic, testSecret, time.Second)
	token := patientToken(t, "p-1")

	var cases = []struct {
		desc string
		req  service.BookingRequest
	}{
		{"no doctor", service.BookingRequest{Date: "2024-05-02", Time: "10:30"}},
		{"no date", service.BookingRequest{DoctorId: "d-1", Time: "10:30"}},
		{"bad date", service.BookingRequest{DoctorId: "d-1", Date: "02/05/2024", Time: "10:30"}},
		{"bad time", service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "10.30am"}},
	}
	for _, testData := range cases {
		t.Run(testData.desc, func(t *testing.T) {
			_, err := svc.Book(context.Background(), token, testData.req)
			assert.ErrorIs(t, err, autherr.ErrInvalidInput)
		})
	}

	// no queue number was spent on rejected requests
	next, err := svc.Book(context.Background(), token, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "10:30"})
	require.NoError(t, err)
	assert.Equal(t, 1, next.TokenNumber)
}

func TestBook_Unauthorized(t *testing.T) {
	svc := service.ProvideAppointmentService(mocks.NewMockAuthDb(), testClinic, testSecret, time.Second)

	_, err := svc.Book(context.Background(), "not-a-token", service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "10:30"})

	assert.ErrorIs(t, err, autherr.ErrUnauthorized)
}

func TestList_OnlyOwnAppointmentsInOrder(t *testing.T) {
	authDb := mocks.NewMockAuthDb()
	svc := service.ProvideAppointmentService(authDb, testClinic, testSecret, time.Second)
	ctx := context.Background()
	asha, ravi := patientToken(t, "p-1"), patientToken(t, "p-2")

	_, err := svc.Book(ctx, asha, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-03", Time: "09:00"})
	require.NoError(t, err)
	_, err = svc.Book(ctx, ravi, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "09:00"})
	require.NoError(t, err)
	_, err = svc.Book(ctx, asha, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "15:00"})
	require.NoError(t, err)

	appointments, err := svc.List(ctx, asha)

	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, "2024-05-02", appointments[0].Date)
	assert.Equal(t, "2024-05-03", appointments[1].Date)
}

func TestCancel(t *testing.T) {
	authDb := mocks.NewMockAuthDb()
	svc := service.ProvideAppointmentService(authDb, testClinic, testSecret, time.Second)
	ctx := context.Background()
	asha, ravi := patientToken(t, "p-1"), patientToken(t, "p-2")

	booked, err := svc.Book(ctx, asha, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "10:30"})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, ravi, booked.AppointmentId)
	assert.ErrorIs(t, err, autherr.ErrNotFound)

	_, err = svc.Cancel(ctx, asha, "missing")
	assert.ErrorIs(t, err, autherr.ErrNotFound)

	cancelled, err := svc.Cancel(ctx, asha, booked.AppointmentId)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, asha, booked.AppointmentId)
	assert.ErrorIs(t, err, autherr.ErrInvalidState)
}

func TestAppointments_StoreFailure(t *testing.T) {
	authDb := mocks.NewMockAuthDb()
	authDb.AppointmentRepo(testClinic).Err = errors.New("connection reset")
	svc := service.ProvideAppointmentService(authDb, testClinic, testSecret, time.Second)
	token := patientToken(t, "p-1")

	_, err := svc.Book(context.Background(), token, service.BookingRequest{DoctorId: "d-1", Date: "2024-05-02", Time: "10:30"})
	assert.ErrorIs(t, err, autherr.ErrStoreUnavailable)

	_, err = svc.List(context.Background(), token)
	assert.ErrorIs(t, err, autherr.ErrStoreUnavailable)
}
