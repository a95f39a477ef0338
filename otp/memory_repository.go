package otp

import (
	"context"
	"sync"
	"time"

	"github.com/Kotlang/clinicAuthGo/models"
)

// MemoryOtpRepository keeps otp records in process. It is the default store
// on a single device.
type MemoryOtpRepository struct {
	mu      sync.Mutex
	records map[string]models.OtpModel
}

func NewMemoryOtpRepository() *MemoryOtpRepository {
	return &MemoryOtpRepository{records: map[string]models.OtpModel{}}
}

func (r *MemoryOtpRepository) Save(ctx context.Context, otp *models.OtpModel) chan error {
	errChan := make(chan error, 1)

	r.mu.Lock()
	r.records[otp.Id()] = *otp
	r.mu.Unlock()

	errChan <- nil
	return errChan
}

func (r *MemoryOtpRepository) FindOneById(ctx context.Context, id string) (chan *models.OtpModel, chan error) {
	resultChan, errChan := make(chan *models.OtpModel, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		resultChan <- nil
		return resultChan, errChan
	}
	resultChan <- &record
	return resultChan, errChan
}

func (r *MemoryOtpRepository) Consume(ctx context.Context, id, code string) (chan bool, chan error) {
	resultChan, errChan := make(chan bool, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || record.Consumed || record.Code != code {
		resultChan <- false
		return resultChan, errChan
	}
	record.Consumed = true
	r.records[id] = record
	resultChan <- true
	return resultChan, errChan
}

func (r *MemoryOtpRepository) DeleteById(ctx context.Context, id string) chan error {
	errChan := make(chan error, 1)

	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()

	errChan <- nil
	return errChan
}

func (r *MemoryOtpRepository) DeleteExpired(ctx context.Context, before time.Time) (chan int64, chan error) {
	resultChan, errChan := make(chan int64, 1), make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, record := range r.records {
		if record.Consumed || record.ExpiresAt.Before(before) {
			delete(r.records, id)
			deleted++
		}
	}
	resultChan <- deleted
	return resultChan, errChan
}

func (r *MemoryOtpRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
