package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/Kotlang/clinicAuthGo/models"
)

type AppointmentRepositoryMock struct {
	mu           sync.Mutex
	appointments map[string]models.AppointmentModel
	counters     map[string]int
	Err          error
}

func NewAppointmentRepositoryMock() *AppointmentRepositoryMock {
	return &AppointmentRepositoryMock{
		appointments: map[string]models.AppointmentModel{},
		counters:     map[string]int{},
	}
}

func (r *AppointmentRepositoryMock) Save(ctx context.Context, appointment *models.AppointmentModel) chan error {
	errChan := make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return errChan
	}
	if err := models.Validate(appointment); err != nil {
		errChan <- err
		return errChan
	}
	r.appointments[appointment.Id()] = *appointment
	errChan <- nil
	return errChan
}

func (r *AppointmentRepositoryMock) FindOneById(ctx context.Context, id string) (chan *models.AppointmentModel, chan error) {
	resultChan, errChan := make(chan *models.AppointmentModel, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return resultChan, errChan
	}
	appointment, ok := r.appointments[id]
	if !ok {
		resultChan <- nil
		return resultChan, errChan
	}
	resultChan <- &appointment
	return resultChan, errChan
}

func (r *AppointmentRepositoryMock) FindByPatient(ctx context.Context, patientId string) (chan []models.AppointmentModel, chan error) {
	resultChan, errChan := make(chan []models.AppointmentModel, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return resultChan, errChan
	}
	appointments := []models.AppointmentModel{}
	for _, appointment := range r.appointments {
		if appointment.PatientId == patientId {
			appointments = append(appointments, appointment)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].Time < appointments[j].Time
	})
	resultChan <- appointments
	return resultChan, errChan
}

func (r *AppointmentRepositoryMock) NextTokenNumber(ctx context.Context, date string) (chan int, chan error) {
	resultChan, errChan := make(chan int, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return resultChan, errChan
	}
	r.counters[date]++
	resultChan <- r.counters[date]
	return resultChan, errChan
}
