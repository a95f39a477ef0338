package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/Kotlang/clinicAuthGo/models"
)

var ErrMockNoDocuments = errors.New("mongo: no documents in result")

// PatientRepositoryMock keeps patients in a map. Setting Err makes every
// call fail with it. Hold delays lookup results until Release.
type PatientRepositoryMock struct {
	mu       sync.Mutex
	patients map[string]models.PatientModel
	Err      error
	gate     chan struct{}
}

func NewPatientRepositoryMock() *PatientRepositoryMock {
	return &PatientRepositoryMock{patients: map[string]models.PatientModel{}}
}

func (r *PatientRepositoryMock) Add(patient models.PatientModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	patient.Id()
	r.patients[patient.PatientId] = patient
}

func (r *PatientRepositoryMock) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.patients)
}

func (r *PatientRepositoryMock) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *PatientRepositoryMock) Hold() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
}

func (r *PatientRepositoryMock) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gate != nil {
		close(r.gate)
		r.gate = nil
	}
}

func (r *PatientRepositoryMock) Save(ctx context.Context, patient *models.PatientModel) chan error {
	errChan := make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return errChan
	}
	stored, ok := r.patients[patient.Id()]
	if !ok || stored.Email != patient.Email {
		errChan <- ErrMockNoDocuments
		return errChan
	}
	r.patients[patient.PatientId] = *patient
	errChan <- nil
	return errChan
}

func (r *PatientRepositoryMock) CreateIfAbsent(ctx context.Context, patient *models.PatientModel) (chan *models.PatientModel, chan error) {
	resultChan, errChan := make(chan *models.PatientModel, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return resultChan, errChan
	}
	for _, stored := range r.patients {
		if stored.Email == patient.Email {
			existing := stored
			resultChan <- &existing
			return resultChan, errChan
		}
	}
	patient.Id()
	r.patients[patient.PatientId] = *patient
	created := *patient
	resultChan <- &created
	return resultChan, errChan
}

func (r *PatientRepositoryMock) FindOneById(ctx context.Context, id string) (chan *models.PatientModel, chan error) {
	return r.find(func(p models.PatientModel) bool { return p.PatientId == id })
}

func (r *PatientRepositoryMock) FindOneByEmail(ctx context.Context, email string) (chan *models.PatientModel, chan error) {
	email = models.NormalizeEmail(email)
	return r.find(func(p models.PatientModel) bool { return p.Email == email })
}

func (r *PatientRepositoryMock) find(match func(models.PatientModel) bool) (chan *models.PatientModel, chan error) {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()

	if gate == nil {
		return r.lookup(match)
	}

	resultChan, errChan := make(chan *models.PatientModel, 1), make(chan error, 1)
	go func() {
		<-gate
		found, err := r.lookup(match)
		select {
		case patient := <-found:
			resultChan <- patient
		case e := <-err:
			errChan <- e
		}
	}()
	return resultChan, errChan
}

func (r *PatientRepositoryMock) lookup(match func(models.PatientModel) bool) (chan *models.PatientModel, chan error) {
	resultChan, errChan := make(chan *models.PatientModel, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		errChan <- r.Err
		return resultChan, errChan
	}
	for _, stored := range r.patients {
		if match(stored) {
			found := stored
			resultChan <- &found
			return resultChan, errChan
		}
	}
	resultChan <- nil
	return resultChan, errChan
}
